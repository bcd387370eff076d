package textures

import "errors"

// The key is absent at this particular source
var NotFoundError = errors.New("texture not found")

// Transport, credentials or any other failure while talking to a backend
var BackendUnavailableError = errors.New("backend is unavailable")

// An external payload couldn't be parsed
var MalformedError = errors.New("malformed payload")

// A backend lacks mandatory configuration. It must stop the application on startup
var MisconfiguredError = errors.New("misconfigured")
