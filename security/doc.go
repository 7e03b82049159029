// Package security builds the client TLS settings used to reach backends
// served over https, including a private CA and mutual TLS.
//
//	backend_tls:
//	  ca_file: /etc/gateway/ca.pem
//	  cert_file: /etc/gateway/client.pem
//	  key_file: /etc/gateway/client-key.pem
package security
