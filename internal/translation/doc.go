// Package translation explains C declarations in Tamil. It feeds candidate
// queries to the external declaration explainer, picks the first meaningful
// line of output and transliterates it. Results are memoized per exact query
// in a bounded LRU, optionally backed by the persistent history store.
package translation
