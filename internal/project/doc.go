// Package project detects the git checkout a cred project lives in and
// resolves which remote repository a sync operation may touch.
//
// A project records its repository in .cred/project.toml at init. Before any
// remote call the recorded value, the live origin of the checkout and an
// explicit --repo override are compared, and a disagreement aborts the
// operation.
package project
