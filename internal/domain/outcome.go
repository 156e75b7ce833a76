package domain

import "fmt"

// OutcomeKind tags the result of a single remote call.
type OutcomeKind string

const (
	OutcomeSuccess              OutcomeKind = "success"
	OutcomeEmptyContent         OutcomeKind = "empty_content"
	OutcomeHTTPError            OutcomeKind = "http_error"
	OutcomeTimeout              OutcomeKind = "timeout"
	OutcomeNetworkError         OutcomeKind = "network_error"
	OutcomeMalformedResponse    OutcomeKind = "malformed_response"
	OutcomeConfigurationMissing OutcomeKind = "configuration_missing"
)

// RemoteOutcome is the result of one remote call. Exactly one kind is set;
// the other fields are only meaningful for the kinds noted.
type RemoteOutcome struct {
	Kind OutcomeKind
	// Provider is the display name of the remote API, e.g. "Gemini".
	Provider string
	// Text holds the answer for OutcomeSuccess.
	Text string
	// Status and Body are set for OutcomeHTTPError.
	Status int
	Body   string
	// Detail carries the error message for network and malformed outcomes.
	Detail string
}

func SuccessOutcome(provider, text string) RemoteOutcome {
	return RemoteOutcome{Kind: OutcomeSuccess, Provider: provider, Text: text}
}

func EmptyContentOutcome(provider string) RemoteOutcome {
	return RemoteOutcome{Kind: OutcomeEmptyContent, Provider: provider}
}

func HTTPErrorOutcome(provider string, status int, body string) RemoteOutcome {
	return RemoteOutcome{Kind: OutcomeHTTPError, Provider: provider, Status: status, Body: body}
}

func TimeoutOutcome(provider string) RemoteOutcome {
	return RemoteOutcome{Kind: OutcomeTimeout, Provider: provider}
}

func NetworkErrorOutcome(provider, detail string) RemoteOutcome {
	return RemoteOutcome{Kind: OutcomeNetworkError, Provider: provider, Detail: detail}
}

func MalformedResponseOutcome(provider, detail string) RemoteOutcome {
	return RemoteOutcome{Kind: OutcomeMalformedResponse, Provider: provider, Detail: detail}
}

func ConfigurationMissingOutcome(provider string) RemoteOutcome {
	return RemoteOutcome{Kind: OutcomeConfigurationMissing, Provider: provider}
}

// OK reports whether the call produced an answer.
func (o RemoteOutcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// Message renders the outcome as the text returned to the user.
func (o RemoteOutcome) Message() string {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Text
	case OutcomeEmptyContent:
		return fmt.Sprintf("No answer returned from %s API.", o.Provider)
	case OutcomeHTTPError:
		return fmt.Sprintf("API Error: %d - %s", o.Status, o.Body)
	case OutcomeTimeout:
		return "Timeout error: API request took too long"
	case OutcomeNetworkError:
		return fmt.Sprintf("Network error: %s", o.Detail)
	case OutcomeMalformedResponse:
		return fmt.Sprintf("Error parsing API response: %s", o.Detail)
	case OutcomeConfigurationMissing:
		return fmt.Sprintf("Error: %s API key not found. Please check your .env file.", o.Provider)
	default:
		return fmt.Sprintf("Unexpected error: unknown outcome %q", o.Kind)
	}
}

// Err converts a failed outcome into a DomainError carrying the user message.
// It returns nil for OutcomeSuccess.
func (o RemoteOutcome) Err() error {
	switch o.Kind {
	case OutcomeSuccess:
		return nil
	case OutcomeConfigurationMissing:
		return NewDomainErrorWithCause(ErrCodeConfiguration, o.Message(), ErrRemoteNotConfigured)
	default:
		return NewDomainErrorWithCause(ErrCodeRemote, o.Message(), ErrRemoteFailed)
	}
}
