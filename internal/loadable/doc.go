// Package loadable discovers file loaders from the class registry.
//
// There is no static list of loaders. Any class deriving from RootClass that
// declares a "Type" property is instantiated and indexed by the formats it
// declares. The Manager listens for class notifications, queues them, and
// drains the queue before answering a query, so the order in which modules
// load and the manager is created does not matter.
package loadable
