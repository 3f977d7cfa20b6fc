// Package batch runs image jobs described by a YAML manifest.
//
// A manifest lists jobs; each job loads one input file, applies its steps
// in order and writes the result:
//
//	concurrency: 4
//	init:
//	  name: thumbnails
//	  leak_checks: true
//	jobs:
//	  - input: photos/cat.jpg
//	    output: out/cat.png
//	    steps:
//	      - resize: {width: 200}
//	      - crop: {left: 0, top: 0, width: 200, height: 150}
//	      - rotate: 90
//
// Relative paths are resolved against the manifest's directory.
package batch
