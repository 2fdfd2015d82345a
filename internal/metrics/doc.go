// Package metrics provides run summaries computed from the sample stream.
//
// Every type implements [dynamo.Metric] and is fed one sample per step.
package metrics
