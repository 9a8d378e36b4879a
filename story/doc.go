// Package story composes climate narratives from stored observations.
//
// The Composer fetches a city's most recent observation, renders it into a
// climate-communication prompt, asks a language model for the narrative, and
// persists the result as an embedded artifact so it becomes retrievable
// through hybrid search.
package story
