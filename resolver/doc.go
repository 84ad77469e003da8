// Package resolver maps driver interface ids to entry points.
//
// The driver exports a single query function that turns a 32-bit interface
// id into a function address. Resolver wraps that lookup with a cache so
// each id is queried once per process, including ids the driver does not
// export. The FunctionID table names the ids the module uses.
package resolver
