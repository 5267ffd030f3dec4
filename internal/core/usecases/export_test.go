package usecases

// OnFrameComputed installs a hook counting frame computations.
func (s *FrameService) OnFrameComputed(fn func()) {
	s.computed = fn
}
