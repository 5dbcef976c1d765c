// Package config provides configuration parsing for the bardfile preview
// server and CLI.
//
// The configuration is stored in bardfile.json (or bardfile.yaml) at the
// project root. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "preview": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "live": true,
//	    "markup": "./form.html"
//	  },
//	  "field": {
//	    "name": "post[images][]",
//	    "id": "images",
//	    "label": "Images",
//	    "multiple": true,
//	    "accepts": "image, video",
//	    "max": "5MB"
//	  },
//	  "blobs": {
//	    "store": "badger",
//	    "dir": ".bardfile/blobs",
//	    "cacheTTL": "5m"
//	  }
//	}
//
// BARDFILE_PORT, BARDFILE_HOST, BARDFILE_BLOB_STORE, BARDFILE_BLOB_DIR,
// BARDFILE_S3_BUCKET and BARDFILE_S3_REGION override the file.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
