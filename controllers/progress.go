package controllers

import (
	"debatecraft/models"
	"debatecraft/websocket"
)

// broadcastProgress compares the profile before and after a mutation and
// pushes level-up and achievement-unlock events for whatever changed. A nil
// before (load failure) suppresses the diff-based events; the mutation's own
// event is sent by the caller.
func broadcastProgress(hub *websocket.ProgressHub, before, after *models.UserProfile) {
	if hub == nil || before == nil || after == nil {
		return
	}
	if after.Level > before.Level {
		hub.Broadcast(websocket.ProgressEvent{
			Type:      "level_up",
			ProfileID: after.ID,
			Level:     after.Level,
			XP:        after.XP,
		})
	}
	for i := range after.Achievements {
		a := after.Achievements[i]
		if !before.HasAchievement(a.ID) {
			hub.Broadcast(websocket.ProgressEvent{
				Type:        "achievement_unlocked",
				ProfileID:   after.ID,
				Achievement: &a,
			})
		}
	}
}
