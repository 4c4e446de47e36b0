package normalize

import "encoding/json"

// Inventory is the always-well-formed inventory answer.
// Success means the endpoint produced a usable, possibly empty, result.
type Inventory struct {
	Success      bool              `json:"success"`
	Assets       []json.RawMessage `json:"assets"`
	Descriptions []json.RawMessage `json:"descriptions"`
	Message      string            `json:"message,omitempty"`
}

// InventoryCheck answers whether an inventory is publicly readable.
type InventoryCheck struct {
	Success           bool   `json:"success"`
	IsPublic          bool   `json:"isPublic"`
	AssetsCount       *int   `json:"assetsCount,omitempty"`
	DescriptionsCount *int   `json:"descriptionsCount,omitempty"`
	Message           string `json:"message"`
}

// Price is a market price overview. All numeric-looking fields are strings.
type Price struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	Volume      string `json:"volume"`
	MedianPrice string `json:"median_price"`
}

// Sticker is one sticker applied to an inspected item.
type Sticker struct {
	Slot      int      `json:"slot"`
	StickerID int      `json:"stickerId"`
	Name      string   `json:"name"`
	Wear      *float64 `json:"wear,omitempty"`
}

// ItemDetails is the inspection result for a single item instance.
type ItemDetails struct {
	Success    bool      `json:"success"`
	Float      float64   `json:"float"`
	PaintSeed  int       `json:"paintSeed"`
	PaintIndex int       `json:"paintIndex"`
	Rarity     string    `json:"rarity"`
	Stickers   []Sticker `json:"stickers"`
	NameTag    *string   `json:"nameTag"`
	StatTrak   bool      `json:"statTrak"`
	Souvenir   bool      `json:"souvenir"`
	Exterior   string    `json:"exterior"`
	Wear       string    `json:"wear"`
}

// Player is a Steam user's public profile summary. Both profile lookup
// strategies produce exactly this field set.
type Player struct {
	SteamID                  string `json:"steamid"`
	PersonaName              string `json:"personaname"`
	ProfileURL               string `json:"profileurl"`
	Avatar                   string `json:"avatar"`
	AvatarMedium             string `json:"avatarmedium"`
	AvatarFull               string `json:"avatarfull"`
	PersonaState             int    `json:"personastate"`
	CommunityVisibilityState int    `json:"communityvisibilitystate"`
	RealName                 string `json:"realname"`
	TimeCreated              int64  `json:"timecreated"`
	LocCountryCode           string `json:"loccountrycode"`
}

// PlayerSummaries mirrors the official GetPlayerSummaries envelope.
type PlayerSummaries struct {
	Response struct {
		Players []Player `json:"players"`
	} `json:"response"`
}

// Skin is best-effort metadata scraped from a market listing page.
type Skin struct {
	MarketHashName string   `json:"market_hash_name"`
	IconURL        *string  `json:"icon_url"`
	Stickers       []string `json:"stickers"`
	NameTag        *string  `json:"name_tag"`
	Wear           *string  `json:"wear"`
	Rarity         *string  `json:"rarity"`
	Condition      *string  `json:"condition"`
}
