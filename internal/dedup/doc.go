// Package dedup tracks trade signatures seen within an ingestion run.
//
// The Data-API re-serves overlapping pages, so the same trade can arrive
// several times across adjacent fetches. The store answers "have we accepted
// this signature before" for both signatures persisted by earlier runs
// (seeded at startup) and signatures accepted earlier in the current run.
package dedup
