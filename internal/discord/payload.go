package discord

// Activity is the presence payload pushed to the client. The field set is
// fully known statically, so it is a fixed schema rather than an open map.
type Activity struct {
	Details string   `json:"details,omitempty"`
	State   string   `json:"state,omitempty"`
	Assets  *Assets  `json:"assets,omitempty"`
	Type    int      `json:"type"`
	Buttons []Button `json:"buttons,omitempty"`
}

// Assets holds the presence artwork references.
type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
}

// Button is a presence action button.
type Button struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}
