package portmap

import "errors"

// ErrProcUnavail is returned by Handle for a procedure number the portmapper
// does not implement (CALLIT, or anything outside 0-4). The caller should
// reply PROC_UNAVAIL.
var ErrProcUnavail = errors.New("portmap: procedure unavailable")

// ErrGarbageArgs is returned by Handle when the procedure's argument bytes
// cannot be decoded. The caller should reply GARBAGE_ARGS.
var ErrGarbageArgs = errors.New("portmap: garbage arguments")

// Handler dispatches the five portmap v2 procedures against a Registry.
type Handler struct {
	registry *Registry
}

// NewHandler creates a Handler backed by registry.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// Handle runs procedure proc with argument bytes data and returns the
// XDR-encoded reply payload (the bytes that follow the RPC success header).
func (h *Handler) Handle(proc uint32, data []byte) ([]byte, error) {
	switch proc {
	case ProcNull:
		return nil, nil

	case ProcSet:
		m, err := DecodeMapping(data)
		if err != nil {
			return nil, ErrGarbageArgs
		}
		return EncodeBoolResponse(h.registry.Set(m)), nil

	case ProcUnset:
		m, err := DecodeMapping(data)
		if err != nil {
			return nil, ErrGarbageArgs
		}
		return EncodeBoolResponse(h.registry.Unset(m.Prog, m.Vers)), nil

	case ProcGetport:
		m, err := DecodeMapping(data)
		if err != nil {
			return nil, ErrGarbageArgs
		}
		return EncodeGetportResponse(h.registry.Getport(m.Prog, m.Vers, m.Prot)), nil

	case ProcDump:
		return EncodeDumpResponse(h.registry.Dump()), nil

	default:
		return nil, ErrProcUnavail
	}
}
