// Package gateway assembles the prediction gateway: its configuration,
// the backend clients, the dispatcher and the /predict handlers.
//
// # Configuration
//
// Backends are listed in order; the order is the fan-out order of model
// "all" and the key order of its result.
//
//	backends:
//	  - name: phonetisaurus
//	    short_name: phs
//	    base_url: http://localhost:5001
//	  - name: transformer
//	    short_name: trf
//	    base_url: http://localhost:5002
//	profiles:
//	  production:
//	    base_urls:
//	      phonetisaurus: http://phonetisaurus.svc
//
// The profile named by the service environment is applied once, by
// ApplyDefaults.
package gateway
