package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteamIDFromClaimedID(t *testing.T) {
	testCases := []struct {
		name      string
		claimedID string
		expected  string
		expectOK  bool
	}{
		{
			name:      "Steam OpenID identity",
			claimedID: "https://steamcommunity.com/openid/id/76561198012345678",
			expected:  "76561198012345678",
			expectOK:  true,
		},
		{
			name:      "Longer digit run is kept whole",
			claimedID: "https://example.com/id/1234567890123456789",
			expected:  "1234567890123456789",
			expectOK:  true,
		},
		{
			name:      "Trailing whitespace",
			claimedID: "https://steamcommunity.com/openid/id/76561198012345678 ",
			expected:  "76561198012345678",
			expectOK:  true,
		},
		{
			name:      "Too short",
			claimedID: "https://steamcommunity.com/openid/id/7656119801234",
			expectOK:  false,
		},
		{
			name:      "Digits not at the end",
			claimedID: "https://steamcommunity.com/openid/id/76561198012345678/extra",
			expectOK:  false,
		},
		{
			name:      "Empty",
			claimedID: "",
			expectOK:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := SteamIDFromClaimedID(tc.claimedID)
			assert.Equal(t, tc.expectOK, ok)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestIsSteamID(t *testing.T) {
	assert.True(t, IsSteamID("76561198012345678"))
	assert.False(t, IsSteamID("7656119801234567"))
	assert.False(t, IsSteamID("76561198012345678a"))
}

func TestConditionFromName(t *testing.T) {
	c := ConditionFromName("AK-47 | Redline (Field-Tested)")
	require.NotNil(t, c)
	assert.Equal(t, "Field-Tested", *c)

	c = ConditionFromName("StatTrak™ M4A4 | Howl (Minimal Wear) ")
	require.NotNil(t, c)
	assert.Equal(t, "Minimal Wear", *c)

	assert.Nil(t, ConditionFromName("Sticker | Titan | Katowice 2014"))
}

func TestExteriorFromFloat(t *testing.T) {
	testCases := []struct {
		float    float64
		expected string
	}{
		{0.01, "Factory New"},
		{0.07, "Minimal Wear"},
		{0.1499, "Minimal Wear"},
		{0.15, "Field-Tested"},
		{0.40, "Well-Worn"},
		{0.45, "Battle-Scarred"},
		{0.99, "Battle-Scarred"},
		{-1, ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ExteriorFromFloat(tc.float), "float %v", tc.float)
	}
}

const listingPage = `<html><script>
var g_rgAssets = {"730":{"2":{"123":{"currency":0,"appid":730,"icon_url":"-9a81dlWLwJ2UUGcVs_nsVtzdOEdtWwKGZZLQHTxDZ7I56KU0Zwwo4NUX4oFJZEHLbXH5ApeO4YmlhxYQknCRvCo04DEVlxkKgpot7HxfDhjxszJemkV09-5lpKKqPrxN7LEmyVQ7MEpiLuSrYmnjQO3-UdsZGHyd4_Bd1RvNQ7T_FDrw-_ng5Pu75iY1zI97bhLsvQz",
"type":"Covert Rifle",
"descriptions":[{"type":"html","value":"Exterior: Field-Tested"},
{"type":"html","value":"<br><div id=\"sticker_info\" name=\"sticker_info\" title=\"Sticker\"><img width=64 height=48 src=\"https:\/\/steamcdn-a.akamaihd.net\/x.png\"><br>Sticker: Crown (Foil), Titan | Katowice 2014<\/center><\/div>"}],
"fraudwarnings":["Name Tag: ''Old Faithful''"]}}}};
</script></html>`

func TestRegexSkinParser_FullPage(t *testing.T) {
	info := RegexSkinParser{}.Parse([]byte(listingPage))

	require.NotNil(t, info.IconURL)
	assert.Contains(t, *info.IconURL, "-9a81dlWLwJ2UUGcVs")
	require.NotNil(t, info.Rarity)
	assert.Equal(t, "Covert", *info.Rarity)
	require.NotNil(t, info.Wear)
	assert.Equal(t, "Field-Tested", *info.Wear)
	require.NotNil(t, info.NameTag)
	assert.Equal(t, "Old Faithful", *info.NameTag)
	assert.Equal(t, []string{"Crown (Foil)", "Titan | Katowice 2014"}, info.Stickers)
}

func TestRegexSkinParser_FieldsAreIndependent(t *testing.T) {
	info := RegexSkinParser{}.Parse([]byte(`{"type":"html"} Exterior: Minimal Wear<`))

	assert.Nil(t, info.IconURL)
	assert.Nil(t, info.Rarity)
	assert.Nil(t, info.NameTag)
	require.NotNil(t, info.Wear)
	assert.Equal(t, "Minimal Wear", *info.Wear)
	assert.NotNil(t, info.Stickers)
	assert.Empty(t, info.Stickers)
}

func TestRegexSkinParser_GarbageInput(t *testing.T) {
	var parser SkinParser = RegexSkinParser{}
	info := parser.Parse([]byte("\x00\x01 not html at all"))
	assert.Equal(t, SkinInfo{Stickers: []string{}}, info)
}
