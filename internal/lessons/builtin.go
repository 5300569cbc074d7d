package lessons

// Builtin is the catalog shipped with the app, used whenever no lessons
// directory is configured.
func Builtin() []Lesson {
	return []Lesson{
		{
			ID:       "l1",
			Title:    "Hook Mastery",
			Icon:     "🪝",
			Duration: "2 min",
			XPReward: 50,
			MinLevel: 1,
			ContentMD: "The first 3 seconds of your video are crucial. A viral hook creates an 'Information Gap'.\n\n" +
				"**Bad Hook:** 'Hello guys, today I will show you...'\n\n" +
				"**Viral Hook:** 'Stop scrolling if you want to save ₹5000 today!'\n\n" +
				"**Action Step:** Review your last 3 videos. Did you start with a bang?",
		},
		{
			ID:       "l2",
			Title:    "Trending Audio 101",
			Icon:     "🎵",
			Duration: "3 min",
			XPReward: 30,
			MinLevel: 1,
			ContentMD: "Trending audio isn't just about dancing. Use trending sounds as background music at low volume (5-10%) to signal the algorithm.\n\n" +
				"**Tip:** Look for the 'Up Arrow' ↗️ icon next to audio names on Reels.",
		},
		{
			ID:        "l3",
			Title:     "Camera Confidence",
			Icon:      "🎥",
			Duration:  "5 min",
			XPReward:  100,
			MinLevel:  5,
			ContentMD: "Locked content.",
		},
		{
			ID:        "l4",
			Title:     "Monetization Secrets",
			Icon:      "💰",
			Duration:  "10 min",
			XPReward:  150,
			MinLevel:  10,
			ContentMD: "Locked content.",
		},
	}
}
