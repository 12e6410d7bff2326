// Package storage provides the object storage abstraction longscribe writes
// artifacts to and stages audio through.
//
// # Backends
//
//   - storage/local: filesystem, used for the output and prompt directories
//   - storage/s3: Amazon S3 and S3-compatible services, with presigned GETs
//   - storage/supabase: Supabase Storage REST API, with signed URLs
//
// Backends register a Factory from init(); import the ones you need:
//
//	import _ "github.com/kbukum/longscribe/storage/s3"
//
// # Configuration
//
//	storage:
//	  provider: "supabase"
//	  url: "https://xyz.supabase.co"
//	  bucket: "audio"
//	  secret_key: "..."
//	  signed_url_expiry: 6h
package storage
