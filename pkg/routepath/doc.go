// Package routepath holds the URL path primitives shared by the router and
// the history adapters: the Location value that describes where the
// application currently is, and Segments, the form its path takes for
// matching.
//
// Segments only affect matching. A Location keeps the path exactly
// as it was requested (including a trailing slash) so that writing it back
// to the address bar round-trips bit for bit.
package routepath
