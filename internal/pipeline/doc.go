// Package pipeline runs the daily feedback sync.
//
// A sync for one wiki is a Pipeline of Steps sharing a SyncJob: fetch
// yesterday's report, stop when it has no feedback, store the feedback and
// the newly ignored hostnames, then mark everything synced and save the
// report back as a bot edit. A step can skip the rest of the pipeline
// without failing it.
//
// BatchProcessor runs the sync for several wikis concurrently with
// errgroup. A failing wiki does not stop the others.
package pipeline
