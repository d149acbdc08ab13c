package transformer

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

const statusNotFound = "404"

// ResponseStatusCodeNormalization removes 404 from the success responses of GET
// operations, which some specs declare for "exists" checks.
type ResponseStatusCodeNormalization struct {
	log zerolog.Logger
}

// NewResponseStatusCodeNormalization creates the pass
func NewResponseStatusCodeNormalization(log zerolog.Logger) *ResponseStatusCodeNormalization {
	return &ResponseStatusCodeNormalization{log: log.With().Str("pass", "response-status-code-normalization").Logger()}
}

// Name implements Pass
func (n *ResponseStatusCodeNormalization) Name() string { return "response-status-code-normalization" }

// Process implements Pass
func (n *ResponseStatusCodeNormalization) Process(m *codemodel.CodeModel) {
	for _, og := range m.OperationGroups {
		for _, op := range og.Operations {
			if !op.HasMethod(http.MethodGet) {
				continue
			}
			responses := make([]*codemodel.Response, 0, len(op.Responses))
			for _, r := range op.Responses {
				codes := r.StatusCodes[:0]
				removed := false
				for _, c := range r.StatusCodes {
					if c == statusNotFound {
						removed = true
						continue
					}
					codes = append(codes, c)
				}
				r.StatusCodes = codes
				if removed {
					n.log.Info().Str("group", og.Name).Str("operation", op.Name).Msg("Remove 404 from success responses")
				}
				if len(codes) > 0 || len(op.Responses) == 1 {
					responses = append(responses, r)
				}
			}
			op.Responses = responses
		}
	}
}
