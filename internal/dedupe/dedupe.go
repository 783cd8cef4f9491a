package dedupe

// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent first-time setup for a player. Only one job runs for a given
// key while other callers wait for the result.

import "golang.org/x/sync/singleflight"

// TitanGroup deduplicates starter titan generation keyed by "titan:<playerID>".
var TitanGroup singleflight.Group

// TitanKey is the TitanGroup key for a player.
func TitanKey(playerID string) string { return "titan:" + playerID }
