package devto

import "fmt"

// OutcomeKind identifies which result variant a publish call resolved to.
type OutcomeKind string

const (
	// OutcomeSuccess means the article was created (HTTP 201).
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeConfigError means the credential was missing; no request was sent.
	OutcomeConfigError OutcomeKind = "config_error"

	// OutcomeAPIError means the API rejected the request with a non-201 status.
	OutcomeAPIError OutcomeKind = "api_error"

	// OutcomeTransportError means the request never produced a usable
	// response (connection refused, timeout, DNS failure, malformed body).
	OutcomeTransportError OutcomeKind = "transport_error"

	// OutcomeUnexpectedError is the catch-all for failures outside the
	// taxonomy above. Nothing propagates past the publish call as a fault.
	OutcomeUnexpectedError OutcomeKind = "unexpected_error"
)

// Outcome is the tagged result of a single publish invocation. It is
// constructed once, rendered to a string, and discarded — never stored.
type Outcome struct {
	Kind OutcomeKind

	// URL of the created article. Success only; may be empty when the
	// API response carried no url field.
	URL string

	// StatusCode of the API response. APIError only.
	StatusCode int

	// Message carries the error detail for the failure variants.
	Message string
}

// String renders the outcome as the single descriptive line callers
// receive. Callers of the publish tool get this string in every case;
// there is no structured error channel in the current contract.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("Article published successfully! URL: %s", o.URL)
	case OutcomeConfigError:
		return fmt.Sprintf("Error: %s environment variable is not set. Please set it to publish articles.", o.Message)
	case OutcomeAPIError:
		return fmt.Sprintf("Failed to publish article. Status code: %d, Error: %s", o.StatusCode, o.Message)
	case OutcomeTransportError:
		return fmt.Sprintf("An error occurred during the API request: %s", o.Message)
	default:
		return fmt.Sprintf("An unexpected error occurred: %s", o.Message)
	}
}

// successOutcome builds the Success variant.
func successOutcome(url string) Outcome {
	return Outcome{Kind: OutcomeSuccess, URL: url}
}

// configErrorOutcome builds the ConfigError variant. envName is the
// credential environment variable named in the rendered message.
func configErrorOutcome(envName string) Outcome {
	return Outcome{Kind: OutcomeConfigError, Message: envName}
}

// apiErrorOutcome builds the APIError variant.
func apiErrorOutcome(status int, message string) Outcome {
	return Outcome{Kind: OutcomeAPIError, StatusCode: status, Message: message}
}

// transportErrorOutcome builds the TransportError variant.
func transportErrorOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeTransportError, Message: err.Error()}
}

// unexpectedErrorOutcome builds the catch-all variant.
func unexpectedErrorOutcome(err error) Outcome {
	return Outcome{Kind: OutcomeUnexpectedError, Message: err.Error()}
}
