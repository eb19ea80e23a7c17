// Package tlsroots builds the trust store used when talking to the
// proxy's reload endpoint over https.
//
// The pool starts from the system roots and can be extended with a
// private CA bundle, typically the CA that issued the proxy's admin
// listener certificate.
package tlsroots
