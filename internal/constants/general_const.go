// Package constants provides shared constant values used throughout the application.
//
// The general_const.go file defines general-purpose constants related to routing
// and request parameters. These constants ensure consistent API patterns and URL
// structure throughout the application, making the API more predictable and easier
// to maintain.
package constants

// URL Parameters define path parameter names used in route definitions.
// These constants are used when defining routes with path parameters and
// when extracting those parameters from requests.
const (
	// ParamUserID is the URL parameter for profile identifiers on privacy,
	// deletion, and avatar routes.
	ParamUserID = "userID"

	// ParamUsername is the URL parameter for public profile lookups.
	ParamUsername = "username"
)

// Query Parameters define common query string parameter names.
// These constants ensure consistent parameter naming in query strings
// across different API endpoints.
const (
	// QueryParamPage is the query parameter for pagination page number.
	QueryParamPage = "page"

	// QueryParamPageSize is the query parameter for pagination page size.
	QueryParamPageSize = "page_size"

	// QueryParamUsername is the query parameter for username availability checks.
	QueryParamUsername = "username"

	// QueryParamCode is the query parameter carrying the OAuth authorization code.
	QueryParamCode = "code"

	// QueryParamState is the query parameter carrying the OAuth CSRF state.
	QueryParamState = "state"
)

// Multipart Form Fields define field names for multipart uploads.
const (
	// FormFieldAvatar is the multipart form field carrying the avatar image.
	FormFieldAvatar = "avatar"
)
