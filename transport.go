package chromedevtools

import "github.com/cczw2010/chromedevtools/internal/config"

// Transport carries raw protocol frames between the client and a VM.
// Implement this to debug over something other than a websocket, or to
// script a VM in tests.
//
// Custom transports can be injected via WithTransport.
type Transport = config.Transport
