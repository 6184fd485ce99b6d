// Package config holds the citronspam runtime configuration: the wiki to talk
// to, bot credentials, output format, and local storage. Values come from
// NewConfig defaults, the .citronspam YAML file and CLI flags, in that order.
package config
