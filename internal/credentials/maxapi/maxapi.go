// Package maxapi declares the credential type for the Max messenger Bot API.
package maxapi

import (
	"net/http"

	"github.com/janekbaraniewski/credkit/internal/core"
	"github.com/janekbaraniewski/credkit/internal/credentials/credbase"
)

const (
	// Name is the credential type name nodes refer to.
	Name = "maxApi"

	// DefaultBaseURL is the current production origin. LegacyBaseURL is
	// still accepted as a baseUrl value.
	DefaultBaseURL = "https://platform-api.max.ru"
	LegacyBaseURL  = "https://botapi.max.ru"

	// Property names of the stored credential.
	FieldAccessToken = "accessToken"
	FieldBaseURL     = "baseUrl"

	docsURL       = "https://dev.max.ru/docs/chatbots/bots-coding/library/js"
	tokenGuideURL = "https://dev.max.ru/docs/chatbots/bots-coding/prepare"
)

// Credential is the Max API credential type.
type Credential struct {
	credbase.Base
}

// New returns the Max API descriptor. It is immutable; Spec returns copies.
func New() *Credential {
	return &Credential{
		Base: credbase.New(core.CredentialSpec{
			Name:             Name,
			DisplayName:      "Max API",
			Icon:             "file:max.svg",
			DocumentationURL: docsURL,
			Properties: []core.Property{
				{
					DisplayName: "Access Token",
					Name:        FieldAccessToken,
					Type:        core.PropertyTypeString,
					TypeOptions: &core.TypeOptions{Password: true},
					Default:     "",
					Description: "Bot access token obtained from @MasterBot in Max messenger. " +
						"Follow the instructions at " + tokenGuideURL + " to get your token.",
				},
				{
					DisplayName: "Base URL",
					Name:        FieldBaseURL,
					Type:        core.PropertyTypeString,
					Default:     DefaultBaseURL,
					Description: "Use " + DefaultBaseURL + " for the current MAX API (recommended), or " +
						LegacyBaseURL + " for the legacy Bot API",
				},
			},
			// platform-api reads the Authorization header and ignores the query;
			// the legacy botapi only reads access_token from the query. Both are
			// sent so either origin accepts the probe.
			Test: core.TestRequest{
				Request: core.RequestOptions{
					Method:  http.MethodGet,
					BaseURL: "={{$credentials.baseUrl}}",
					URL:     "/me",
					Headers: map[string]string{
						"Authorization": "=Bearer {{$credentials.accessToken}}",
					},
					QS: map[string]string{
						"access_token": "={{$credentials.accessToken}}",
					},
				},
			},
		}),
	}
}
