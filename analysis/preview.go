package analysis

// PreviewPort plays reference audio on the host. The editor only starts
// and stops playback; how the host does it is up to the implementation.
type PreviewPort interface {
	Play(c *Clip) error
	StopAll()
}

// NopPreview is a PreviewPort that plays nothing
type NopPreview struct{}

func (NopPreview) Play(*Clip) error { return nil }
func (NopPreview) StopAll()         {}
