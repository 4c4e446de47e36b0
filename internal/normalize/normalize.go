// Package normalize turns raw upstream outcomes into the fixed response shapes
// served to the client.
//
// Every function here takes the (response, error) pair produced by an
// upstream call. Soft-fail shapes (inventory, inventory check, price) never
// return an error; hard-fail shapes (inspection, profile) return an
// *UpstreamError carrying the status the caller should see.
package normalize

import (
	"encoding/json"
	"fmt"
	"net/http"

	"steam-bff-backend/internal/parse"
	"steam-bff-backend/internal/upstream"
)

// Messages and placeholder texts used in degraded results.
const (
	MsgInventoryPrivate  = "inventory is private"
	MsgRateLimited       = "rate limited, retry later"
	MsgUnprocessable     = "could not process response"
	MsgInventoryEmpty    = "inventory empty or not found"
	MsgInventoryFailed   = "failed to fetch inventory"
	MsgInventoryPublic   = "inventory is public"
	MsgPublicButEmpty    = "inventory is public but empty"
	MsgSteamUnreachable  = "failed to reach steam"
	MsgInvalidSteamID    = "invalid steam id"
	DefaultPriceText     = "R$ 0,00"
	DefaultVolumeText    = "0"
	inspectMissingDetail = "inspection response missing iteminfo"
)

type inventoryBody struct {
	Assets       []json.RawMessage `json:"assets"`
	Descriptions []json.RawMessage `json:"descriptions"`
}

// EmptyInventory is a successful inventory with no items and a message.
func EmptyInventory(message string) Inventory {
	return Inventory{
		Success:      true,
		Assets:       []json.RawMessage{},
		Descriptions: []json.RawMessage{},
		Message:      message,
	}
}

// InventoryFrom maps any inventory outcome to a successful Inventory.
// Upstream failures only show up in Message.
func InventoryFrom(resp *upstream.Response, err error) Inventory {
	if err != nil {
		return EmptyInventory(MsgInventoryFailed)
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return EmptyInventory(MsgInventoryPrivate)
	case resp.StatusCode == http.StatusTooManyRequests:
		return EmptyInventory(MsgRateLimited)
	case !resp.OK():
		return EmptyInventory(fmt.Sprintf("steam returned status %d", resp.StatusCode))
	}

	var body inventoryBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return EmptyInventory(MsgUnprocessable)
	}
	if body.Assets == nil || body.Descriptions == nil {
		return EmptyInventory(MsgInventoryEmpty)
	}

	return Inventory{
		Success:      true,
		Assets:       body.Assets,
		Descriptions: body.Descriptions,
	}
}

// InventoryCheckFrom reports whether an inventory is readable.
func InventoryCheckFrom(resp *upstream.Response, err error) InventoryCheck {
	if err != nil {
		return InventoryCheck{Message: MsgSteamUnreachable}
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return InventoryCheck{Success: true, Message: MsgInventoryPrivate}
	case resp.StatusCode == http.StatusTooManyRequests:
		return InventoryCheck{Message: MsgRateLimited}
	case !resp.OK():
		return InventoryCheck{Message: fmt.Sprintf("steam returned status %d", resp.StatusCode)}
	}

	var body inventoryBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return InventoryCheck{Message: MsgUnprocessable}
	}

	assets, descriptions := len(body.Assets), len(body.Descriptions)
	check := InventoryCheck{
		Success:           true,
		IsPublic:          true,
		AssetsCount:       &assets,
		DescriptionsCount: &descriptions,
		Message:           MsgInventoryPublic,
	}
	if assets == 0 {
		check.Message = MsgPublicButEmpty
	}
	return check
}

// ZeroPrice is the price reported when no usable price could be fetched.
func ZeroPrice() Price {
	return Price{
		Success:     false,
		LowestPrice: DefaultPriceText,
		Volume:      DefaultVolumeText,
		MedianPrice: DefaultPriceText,
	}
}

// PriceFrom maps a price overview outcome to a Price. Missing fields fall
// back to their zero text; any failure yields ZeroPrice.
func PriceFrom(resp *upstream.Response, err error) Price {
	if err != nil || !resp.OK() {
		return ZeroPrice()
	}

	var body struct {
		Success     bool   `json:"success"`
		LowestPrice string `json:"lowest_price"`
		Volume      string `json:"volume"`
		MedianPrice string `json:"median_price"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return ZeroPrice()
	}

	price := ZeroPrice()
	price.Success = body.Success
	if body.LowestPrice != "" {
		price.LowestPrice = body.LowestPrice
	}
	if body.Volume != "" {
		price.Volume = body.Volume
	}
	if body.MedianPrice != "" {
		price.MedianPrice = body.MedianPrice
	}
	return price
}

type itemInfo struct {
	FloatValue     float64 `json:"floatvalue"`
	PaintSeed      int     `json:"paintseed"`
	PaintIndex     int     `json:"paintindex"`
	RarityName     string  `json:"rarity_name"`
	QualityName    string  `json:"quality_name"`
	Origin         int     `json:"origin"`
	CustomName     *string `json:"customname"`
	KillEaterValue *int    `json:"killeatervalue"`
	WearName       string  `json:"wear_name"`
	Stickers       []struct {
		Slot      int      `json:"slot"`
		StickerID int      `json:"stickerId"`
		Name      string   `json:"name"`
		Wear      *float64 `json:"wear"`
	} `json:"stickers"`
}

// originSouvenirPackage is the item origin code for souvenir package drops.
const originSouvenirPackage = 8

// ItemDetailsFrom maps an inspection outcome strictly: anything short of a
// complete iteminfo is an error.
func ItemDetailsFrom(resp *upstream.Response, err error) (ItemDetails, error) {
	if err != nil {
		return ItemDetails{}, &UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: "failed to reach inspection service",
			Err:     err,
		}
	}
	if !resp.OK() {
		msg := fmt.Sprintf("inspection service returned status %d", resp.StatusCode)
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.Body, &body) == nil && body.Error != "" {
			msg = body.Error
		}
		return ItemDetails{}, &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	var body struct {
		ItemInfo *itemInfo `json:"iteminfo"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return ItemDetails{}, &UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: inspectMissingDetail,
			Err:     err,
		}
	}
	if body.ItemInfo == nil {
		return ItemDetails{}, &UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: inspectMissingDetail,
		}
	}

	info := body.ItemInfo
	stickers := make([]Sticker, 0, len(info.Stickers))
	for _, s := range info.Stickers {
		stickers = append(stickers, Sticker{
			Slot:      s.Slot,
			StickerID: s.StickerID,
			Name:      s.Name,
			Wear:      s.Wear,
		})
	}

	return ItemDetails{
		Success:    true,
		Float:      info.FloatValue,
		PaintSeed:  info.PaintSeed,
		PaintIndex: info.PaintIndex,
		Rarity:     info.RarityName,
		Stickers:   stickers,
		NameTag:    info.CustomName,
		StatTrak:   info.KillEaterValue != nil,
		Souvenir:   info.QualityName == "Souvenir" || info.Origin == originSouvenirPackage,
		Exterior:   parse.ExteriorFromFloat(info.FloatValue),
		Wear:       info.WearName,
	}, nil
}

// SkinFrom assembles scraped listing data into a Skin.
func SkinFrom(marketHashName string, info parse.SkinInfo) Skin {
	stickers := info.Stickers
	if stickers == nil {
		stickers = []string{}
	}
	return Skin{
		MarketHashName: marketHashName,
		IconURL:        info.IconURL,
		Stickers:       stickers,
		NameTag:        info.NameTag,
		Wear:           info.Wear,
		Rarity:         info.Rarity,
		Condition:      parse.ConditionFromName(marketHashName),
	}
}
