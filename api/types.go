package api

// EncodeRequest is the body of POST /api/encode.
type EncodeRequest struct {
	Text string `json:"text"`

	// Special splits out registered special-token literals before encoding.
	Special bool `json:"special,omitempty"`
}

type EncodeResponse struct {
	IDs []int `json:"ids"`
}

// DecodeRequest is the body of POST /api/decode.
type DecodeRequest struct {
	IDs []int `json:"ids"`
}

type DecodeResponse struct {
	Text string `json:"text"`
}

// Merge describes one learned merge rule.
type Merge struct {
	ID    int    `json:"id"`
	Left  int    `json:"left"`
	Right int    `json:"right"`
	Token string `json:"token"`
}

type SpecialToken struct {
	ID      int    `json:"id"`
	Literal string `json:"literal"`
}

// InfoResponse is returned by GET /api/info.
type InfoResponse struct {
	Model     string         `json:"model"`
	Version   string         `json:"version"`
	Pattern   string         `json:"pattern"`
	VocabSize int            `json:"vocab_size"`
	Merges    []Merge        `json:"merges"`
	Specials  []SpecialToken `json:"specials"`
}
