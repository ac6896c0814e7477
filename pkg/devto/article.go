package devto

// ArticleRequest describes one article to publish.
// Title and BodyMarkdown are required; everything else is optional.
type ArticleRequest struct {
	// Title of the article.
	Title string

	// BodyMarkdown is the article content in Markdown.
	BodyMarkdown string

	// Tags to attach (dev.to accepts up to four).
	Tags []string

	// Published controls draft (false) vs. immediately live (true).
	Published bool

	// Series is the name of the series this article belongs to.
	Series string

	// CanonicalURL points at the original publication when cross-posting.
	CanonicalURL string

	// CoverImage is the URL of the article's cover image.
	CoverImage string
}

// articlePayload is the wire shape the articles endpoint expects:
// every field nested under a mandatory "article" object.
type articlePayload struct {
	Article articleFields `json:"article"`
}

// articleFields mirrors the Forem article creation schema. Optional
// fields use omitempty so an unset (or empty) value is omitted from the
// payload entirely rather than sent as null or "". Note the sharp edge
// this inherits: an explicitly empty tag list or series is
// indistinguishable from "not supplied". Published is always sent,
// making the draft default explicit on the wire.
type articleFields struct {
	Title        string   `json:"title"`
	BodyMarkdown string   `json:"body_markdown"`
	Published    bool     `json:"published"`
	Tags         []string `json:"tags,omitempty"`
	Series       string   `json:"series,omitempty"`
	CanonicalURL string   `json:"canonical_url,omitempty"`
	CoverImage   string   `json:"cover_image,omitempty"`
}

// buildPayload maps an ArticleRequest to the outbound wire shape.
func buildPayload(req ArticleRequest) articlePayload {
	return articlePayload{
		Article: articleFields{
			Title:        req.Title,
			BodyMarkdown: req.BodyMarkdown,
			Published:    req.Published,
			Tags:         req.Tags,
			Series:       req.Series,
			CanonicalURL: req.CanonicalURL,
			CoverImage:   req.CoverImage,
		},
	}
}
