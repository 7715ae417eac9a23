// Package github pushes repository secrets to GitHub Actions.
//
// Values are sealed client side with the repository's Curve25519 public
// key (a NaCl anonymous sealed box) before they leave the machine, as the
// Actions secrets API requires:
//
//	GET    /repos/{owner}/{repo}/actions/secrets/public-key
//	PUT    /repos/{owner}/{repo}/actions/secrets/{name}
//	DELETE /repos/{owner}/{repo}/actions/secrets/{name}
//
// The API never returns secret values, so the client is write-only.
package github
