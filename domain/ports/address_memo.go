package ports

// AddressMemo maps resolved numeric addresses back to the hostname that
// produced them. It is used for prompt display only, never for decisions.
type AddressMemo interface {
	Record(host, addr string)
	Lookup(addr string) (host string, ok bool)
}
