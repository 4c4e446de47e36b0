package normalize

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/clbanning/mxj/v2"

	"steam-bff-backend/internal/upstream"
)

// memberSinceLayout is the date format of <memberSince> in profile XML.
const memberSinceLayout = "January 2, 2006"

func profileFailure(resp *upstream.Response, err error) error {
	if err != nil {
		return &UpstreamError{Status: http.StatusInternalServerError, Message: MsgSteamUnreachable, Err: err}
	}
	if !resp.OK() {
		return &UpstreamError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("steam returned status %d", resp.StatusCode),
		}
	}
	return nil
}

// PlayersFromAPI decodes an official GetPlayerSummaries response.
func PlayersFromAPI(resp *upstream.Response, err error) (PlayerSummaries, error) {
	if failure := profileFailure(resp, err); failure != nil {
		return PlayerSummaries{}, failure
	}

	var summaries PlayerSummaries
	if err := json.Unmarshal(resp.Body, &summaries); err != nil {
		return PlayerSummaries{}, &UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: "could not process profile response",
			Err:     err,
		}
	}
	if summaries.Response.Players == nil {
		summaries.Response.Players = []Player{}
	}
	return summaries, nil
}

// PlayersFromXML rebuilds a GetPlayerSummaries-shaped answer from the
// community profile XML document (".../profiles/<id>/?xml=1").
func PlayersFromXML(resp *upstream.Response, err error, communityURL string) (PlayerSummaries, error) {
	if failure := profileFailure(resp, err); failure != nil {
		return PlayerSummaries{}, failure
	}

	doc, err := mxj.NewMapXml(resp.Body)
	if err != nil {
		return PlayerSummaries{}, &UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: "could not process profile response",
			Err:     err,
		}
	}

	if msg, err := doc.ValueForPathString("response.error"); err == nil {
		return PlayerSummaries{}, &UpstreamError{Status: http.StatusNotFound, Message: strings.TrimSpace(msg)}
	}

	steamID := xmlText(doc, "profile.steamID64")
	if steamID == "" {
		return PlayerSummaries{}, &UpstreamError{
			Status:  http.StatusInternalServerError,
			Message: "could not process profile response",
		}
	}

	player := Player{
		SteamID:      steamID,
		PersonaName:  xmlText(doc, "profile.steamID"),
		Avatar:       xmlText(doc, "profile.avatarIcon"),
		AvatarMedium: xmlText(doc, "profile.avatarMedium"),
		AvatarFull:   xmlText(doc, "profile.avatarFull"),
		RealName:     xmlText(doc, "profile.realname"),
	}

	base := strings.TrimRight(communityURL, "/")
	if custom := xmlText(doc, "profile.customURL"); custom != "" {
		player.ProfileURL = fmt.Sprintf("%s/id/%s/", base, custom)
	} else {
		player.ProfileURL = fmt.Sprintf("%s/profiles/%s/", base, steamID)
	}

	switch xmlText(doc, "profile.onlineState") {
	case "online", "in-game":
		player.PersonaState = 1
	}

	if v, err := strconv.Atoi(xmlText(doc, "profile.visibilityState")); err == nil {
		player.CommunityVisibilityState = v
	}

	if since := xmlText(doc, "profile.memberSince"); since != "" {
		if t, err := time.Parse(memberSinceLayout, since); err == nil {
			player.TimeCreated = t.Unix()
		}
	}

	var summaries PlayerSummaries
	summaries.Response.Players = []Player{player}
	return summaries, nil
}

func xmlText(doc mxj.Map, path string) string {
	v, err := doc.ValueForPathString(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}
