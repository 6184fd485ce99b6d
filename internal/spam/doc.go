// Package spam reads and writes Citron/Spam reports stored on wiki pages.
//
// FetchReport and PutReport are the blocking calls. GetReport and SaveReport
// run the same calls in a goroutine and hand back a model.Query or
// model.Mutation that settles exactly once. Each call makes a single
// attempt; edit conflicts are detected by the wiki.
package spam
