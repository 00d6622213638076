package handler

// SetMaxUploadSize overrides the request body limit in tests.
func (h *Handler) SetMaxUploadSize(n int64) {
	h.maxUpload = n
}
