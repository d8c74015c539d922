package models

// Classification is the structured result of running a message through a
// language model. It is ephemeral: produced per message, consumed immediately
// to build a ContentRecord or GalleryRecord, never persisted on its own.
type Classification struct {
	Category Category `json:"category"`
	TitleHI  string   `json:"title_hi"`
	TitleEN  string   `json:"title_en"`
	DescHI   string   `json:"description_hi"`
	DescEN   string   `json:"description_en"`
	Section  string   `json:"section"`
	Priority Priority `json:"priority"`
	Tags     []string `json:"tags"`
}
