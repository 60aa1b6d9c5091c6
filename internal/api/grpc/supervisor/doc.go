// Package supervisor implements the gRPC transport that lets operators
// watch and stop a running injector.
//
// The service is declared with protobuf well-known types (Empty in, Struct
// out) so no generated code is needed; the codec in this package converts
// between pulse.Progress and structpb.Struct for the transport and the
// status file alike.
package supervisor
