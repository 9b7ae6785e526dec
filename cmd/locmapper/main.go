// Command locmapper turns a batch of named location records into
// geocoded, validated, spatially-clustered points suitable for mapping.
//
// It can run one-shot over a CSV file (`locmapper run`) or serve batches
// over HTTP (`locmapper serve`).
package main

func main() {
	execute()
}
