// Package sevenzip wraps the 7-Zip CLI used to unpack the Windows installer
// and the nupkg it embeds.
package sevenzip
