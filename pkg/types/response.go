package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// PageEnvelope carries a list response and the cursor for the next page.
type PageEnvelope struct {
	Data       any    `json:"data"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
