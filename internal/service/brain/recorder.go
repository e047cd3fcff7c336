package brain

// Recorder receives business events for metrics. observability.Collector
// implements it; a nil Recorder passed to constructors records nothing.
type Recorder interface {
	CacheHit(cache string)
	CacheMiss(cache string)
	CollectionCreated()
	CollectionsRemoved(mode string, n int64)
	ContentRemoved(n int64)
	BlobDeleteFailed()
}

type noopRecorder struct{}

func (noopRecorder) CacheHit(string)                   {}
func (noopRecorder) CacheMiss(string)                  {}
func (noopRecorder) CollectionCreated()                {}
func (noopRecorder) CollectionsRemoved(string, int64) {}
func (noopRecorder) ContentRemoved(int64)              {}
func (noopRecorder) BlobDeleteFailed()                 {}

func recorderOrNoop(r Recorder) Recorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
