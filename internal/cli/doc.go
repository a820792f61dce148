// Package cli implements the request layer behind the murl command: parsing
// curl-style arguments, mapping the URL's virtual path onto an MCP method,
// and executing the request with transparent OAuth authentication.
//
// A murl URL has two parts: the base URL of the MCP server and a virtual
// path naming what to do there. The virtual path starts at the last /tools,
// /resources, or /prompts segment:
//
//	murl http://localhost:3000/tools              -> tools/list
//	murl http://localhost:3000/tools/echo -d k=v  -> tools/call
//	murl http://localhost:3000/resources/etc/motd -> resources/read
//	murl http://localhost:3000/prompts/greet      -> prompts/get
//
// The Executor owns the authentication decision: an explicit Authorization
// header or --no-auth bypasses the credential store entirely; otherwise a
// valid credential is ensured before the request, and a server-side 401 on
// an authenticated request triggers exactly one full re-authorization and
// one retry.
package cli
