// Package preflight provides readiness checks for the filesystem paths and
// external services recall depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and logs every failing check; it also
//     folds the results into the health endpoint as stage readiness.
//   - The CLI "recall health" command renders the daemon's view, and
//     CheckOpenAI backs its optional live API probe.
//
// A check that cannot pass without a network round trip is only run when
// explicitly requested.
package preflight
