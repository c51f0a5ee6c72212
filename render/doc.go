// Package render provides the rendering collaborators that terminal routes
// hand resolved files to.
//
//   - Templates renders Go html/template files with request data.
//   - Scripts executes server-side scripts through CGI, optionally via an
//     interpreter such as node or python3.
//
// Neither caches anything: every request reads the file from disk again so
// edits show up on the next reload.
package render
