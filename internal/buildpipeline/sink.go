package buildpipeline

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SliceSink collects events in memory. Not goroutine-safe on its own; the
// pipeline serializes calls to its sink.
type SliceSink struct {
	Events []Event
}

func (s *SliceSink) OnEvent(evt Event) {
	s.Events = append(s.Events, evt)
}
