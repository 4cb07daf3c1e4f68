package types

// SuccessEnvelope wraps every JSON success body. The clipboard export is the
// one endpoint that skips it and returns text/plain.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the wire form of a coded error. Code matches the stable error
// code strings (VALIDATION, SCHEMA_DRIFT, BULK_PARTIAL and the rest);
// Details carries structured context only for codes that allow it, such as
// the applied-chunk counts of a partial bulk write.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every JSON error body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
