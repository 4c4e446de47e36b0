package normalize

import (
	"encoding/json"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<profile>
	<steamID64>76561197960287930</steamID64>
	<steamID><![CDATA[Rabscuttle]]></steamID>
	<onlineState>in-game</onlineState>
	<privacyState>public</privacyState>
	<visibilityState>3</visibilityState>
	<avatarIcon><![CDATA[https://avatars.steamstatic.com/abc.jpg]]></avatarIcon>
	<avatarMedium><![CDATA[https://avatars.steamstatic.com/abc_medium.jpg]]></avatarMedium>
	<avatarFull><![CDATA[https://avatars.steamstatic.com/abc_full.jpg]]></avatarFull>
	<memberSince>September 12, 2003</memberSince>
	<customURL><![CDATA[rabscuttle]]></customURL>
	<realname><![CDATA[Gabe]]></realname>
</profile>`

const playerSummariesJSON = `{"response":{"players":[{
	"steamid":"76561197960287930","communityvisibilitystate":3,"profilestate":1,
	"personaname":"Rabscuttle","profileurl":"https://steamcommunity.com/id/rabscuttle/",
	"avatar":"https://avatars.steamstatic.com/abc.jpg","avatarmedium":"https://avatars.steamstatic.com/abc_medium.jpg",
	"avatarfull":"https://avatars.steamstatic.com/abc_full.jpg","avatarhash":"abc","personastate":1,
	"realname":"Gabe","primaryclanid":"103582791429521408","timecreated":1063407589,"loccountrycode":"US"
}]}}`

func TestPlayersFromXML(t *testing.T) {
	summaries, err := PlayersFromXML(response(http.StatusOK, profileXML), nil, "https://steamcommunity.com/")
	require.NoError(t, err)
	require.Len(t, summaries.Response.Players, 1)

	p := summaries.Response.Players[0]
	assert.Equal(t, "76561197960287930", p.SteamID)
	assert.Equal(t, "Rabscuttle", p.PersonaName)
	assert.Equal(t, "https://steamcommunity.com/id/rabscuttle/", p.ProfileURL)
	assert.Equal(t, "https://avatars.steamstatic.com/abc_full.jpg", p.AvatarFull)
	assert.Equal(t, 1, p.PersonaState)
	assert.Equal(t, 3, p.CommunityVisibilityState)
	assert.Equal(t, "Gabe", p.RealName)
	assert.NotZero(t, p.TimeCreated)
}

func TestPlayersFromXML_NoCustomURL(t *testing.T) {
	body := `<profile><steamID64>76561197960287930</steamID64><steamID>x</steamID><onlineState>offline</onlineState></profile>`
	summaries, err := PlayersFromXML(response(http.StatusOK, body), nil, "https://steamcommunity.com")
	require.NoError(t, err)

	p := summaries.Response.Players[0]
	assert.Equal(t, "https://steamcommunity.com/profiles/76561197960287930/", p.ProfileURL)
	assert.Equal(t, 0, p.PersonaState)
}

func TestPlayersFromXML_Failures(t *testing.T) {
	_, err := PlayersFromXML(response(http.StatusOK, `<response><error><![CDATA[The specified profile could not be found.]]></error></response>`), nil, "")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.Equal(t, "The specified profile could not be found.", MessageOf(err))

	_, err = PlayersFromXML(response(http.StatusOK, `not xml at all <<<`), nil, "")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))

	_, err = PlayersFromXML(response(http.StatusServiceUnavailable, ``), nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(err))

	_, err = PlayersFromXML(nil, errTransport, "")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestPlayersFromAPI(t *testing.T) {
	summaries, err := PlayersFromAPI(response(http.StatusOK, playerSummariesJSON), nil)
	require.NoError(t, err)
	require.Len(t, summaries.Response.Players, 1)
	assert.Equal(t, "US", summaries.Response.Players[0].LocCountryCode)

	empty, err := PlayersFromAPI(response(http.StatusOK, `{"response":{}}`), nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Response.Players)

	_, err = PlayersFromAPI(response(http.StatusForbidden, `<html>Access denied</html>`), nil)
	assert.Equal(t, http.StatusForbidden, StatusOf(err))

	_, err = PlayersFromAPI(response(http.StatusOK, `<html>`), nil)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func playerKeys(t *testing.T, summaries PlayerSummaries) []string {
	t.Helper()
	raw, err := json.Marshal(summaries)
	require.NoError(t, err)

	var decoded struct {
		Response struct {
			Players []map[string]any `json:"players"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Response.Players, 1)

	keys := make([]string, 0, len(decoded.Response.Players[0]))
	for k := range decoded.Response.Players[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestProfileStrategiesShareFieldSet(t *testing.T) {
	fromAPI, err := PlayersFromAPI(response(http.StatusOK, playerSummariesJSON), nil)
	require.NoError(t, err)
	fromXML, err := PlayersFromXML(response(http.StatusOK, profileXML), nil, "https://steamcommunity.com")
	require.NoError(t, err)

	assert.Equal(t, playerKeys(t, fromAPI), playerKeys(t, fromXML))
	assert.Equal(t, fromAPI.Response.Players[0].ProfileURL, fromXML.Response.Players[0].ProfileURL)
}
