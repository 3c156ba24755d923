package storage

// SwipeAction names what a horizontal swipe does on a given tab.
type SwipeAction string

const (
	SwipeArchive SwipeAction = "archive"
	SwipeDelete  SwipeAction = "delete"
	SwipeDone    SwipeAction = "done"
)

// Settings is the app settings document, persisted under its own key so it
// can be exported and reset independently of item state.
type Settings struct {
	BackupFrequencyDays   int                    `json:"backupFrequencyDays"`
	AllowConcurrentTimers bool                   `json:"allowConcurrentTimers"`
	SwipeBindings         map[string]SwipeAction `json:"swipeBindings"`
	WeekStartDay          int                    `json:"weekStartDay"`
}

func DefaultSettings() Settings {
	return Settings{
		BackupFrequencyDays:   7,
		AllowConcurrentTimers: false,
		SwipeBindings: map[string]SwipeAction{
			"dayToDay":    SwipeDone,
			"hitMyGoal":   SwipeArchive,
			"spendMyTime": SwipeArchive,
		},
		WeekStartDay: 1,
	}
}

// AISettings holds the provider credentials document. The key never leaves
// the machine except toward the chosen provider.
type AISettings struct {
	Provider string `json:"provider,omitempty"`
	APIKey   string `json:"apiKey,omitempty"`
	Model    string `json:"model,omitempty"`
}

func (s AISettings) Configured() bool {
	return s.Provider != "" && s.APIKey != ""
}
