package dispatcharr

// Channel is a lineup channel as stored by Dispatcharr.
type Channel struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	ChannelNumber float64  `json:"channel_number"`
	ChannelGroup  string   `json:"channel_group_name"`
	EPGDataID     *int64   `json:"epg_data_id"`
	Profiles      []string `json:"profile_names,omitempty"`
}

// ChannelFilter narrows a channel listing. Groups and IgnoreGroups are
// mutually exclusive; the caller validates that before listing.
type ChannelFilter struct {
	Groups       []string
	IgnoreGroups []string
	Profiles     []string
}

// GuideSource is a named provider of schedule data.
type GuideSource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GuideEntry is one provider's record for a single channel.
type GuideEntry struct {
	ID       int64  `json:"id"`
	TvgID    string `json:"tvg_id"`
	Name     string `json:"name"`
	SourceID int64  `json:"epg_source"`
}
