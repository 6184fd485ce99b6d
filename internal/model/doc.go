// Package model defines the data structures shared throughout citronspam.
//
// This package contains the following main types:
//   - Report: the Citron/Spam report document stored as JSON on a wiki page
//   - Hostname, Revision, Feedback: the parts of a Report
//   - Query and Mutation: explicit result types for asynchronous fetch and
//     save calls (Loading/Pending, Success, Failure)
//
// The report types are serialized with exactly the JSON field names used on
// the wiki, so a Report read from a page and written back keeps its shape.
package model
