package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// applyResourceBlocking fails requests for the listed resource types. Scans
// only need the DOM, not what it renders.
func applyResourceBlocking(page *rod.Page, types []string) error {
	blocked := blockSet(types)
	router := page.HijackRequests()

	err := router.Add("*", "", func(ctx *rod.Hijack) {
		if shouldBlock(blocked, string(ctx.Request.Type())) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return err
	}

	go router.Run()
	return nil
}

func blockSet(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[strings.ToLower(strings.TrimSpace(t))] = true
	}
	return set
}

// shouldBlock maps CDP resource types onto the plural config names.
func shouldBlock(set map[string]bool, resType string) bool {
	lower := strings.ToLower(resType)
	switch lower {
	case "image":
		return set["images"]
	case "font":
		return set["fonts"]
	case "media":
		return set["media"]
	case "stylesheet":
		return set["stylesheets"]
	}
	return set[lower]
}
