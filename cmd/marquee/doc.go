// Command marquee enriches scraped OTT content collections with canonical
// metadata from external providers and manages the resolution cache.
package main
