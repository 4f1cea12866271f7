// Package search turns sparse member search conditions into a predicate,
// runs it against members left-joined to their team and pages the results,
// skipping the count query when the window already proves the total.
package search
