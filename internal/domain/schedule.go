package domain

import (
	"sync"
	"time"
)

// ScheduledMessage is a recurring announcement bound to a cron expression.
type ScheduledMessage struct {
	ID        int64  `json:"id"`
	GuildID   string `json:"guildId"`
	ChannelID string `json:"channelId"`
	Message   string `json:"message"`
	CronExpr  string `json:"cron"`
}

var (
	scheduleIDMu   sync.Mutex
	lastScheduleID int64
)

// NewScheduleID returns a unix-millisecond derived identifier that is
// strictly increasing within the process, so back-to-back creations never
// collide.
func NewScheduleID() int64 {
	scheduleIDMu.Lock()
	defer scheduleIDMu.Unlock()

	id := time.Now().UnixMilli()
	if id <= lastScheduleID {
		id = lastScheduleID + 1
	}
	lastScheduleID = id

	return id
}
