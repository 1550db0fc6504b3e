// Package transports holds the transport plugins delivering documents to
// commerce instances.
//
//   - ocapi: content assets, folder assignments and slot configurations
//     over the OCAPI data API
//   - webdav: static files and templates over WebDAV
package transports
