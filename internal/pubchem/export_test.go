package pubchem

// EthanolRecord exposes the ethanol record fixture to the external test
// package; client_test.go lives in pubchem_test to avoid an import cycle
// through internal/testutil.
const EthanolRecord = ethanolRecord
