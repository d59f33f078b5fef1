package vim3

import (
	"fmt"

	"vim3-go/errcode"
	"vim3-go/types"
)

// MiscInitLate brings up Ethernet, lets the ethaddr generator run, then
// derives "serial#" from the chip serial if it is not set yet. The only
// error it returns is a failed secure monitor query, with code
// errcode.InvalidArgument.
func (b *Board) MiscInitLate() error {
	p := b.Profile

	if b.Eth != nil {
		if err := b.Eth.Init(p.EthMode, p.EthIndex); err != nil {
			b.report(miscDiag(KindEthInit, errcode.IO, err, "ethernet init failed (%v)", err), types.SeverityWarn)
		}
	}
	if b.Ethaddr != nil {
		if err := b.Ethaddr.Generate(); err != nil {
			b.report(miscDiag(KindEthaddr, errcode.Of(err), err, "cannot generate ethaddr (%v)", err), types.SeverityWarn)
		}
	}

	if b.Env == nil {
		d := miscDiag(KindSerialSet, errcode.InvalidArgument, nil, "no environment")
		b.report(d, types.SeverityError)
		return d
	}
	if _, ok := b.Env.Get(p.SerialKey); ok {
		return nil
	}

	if b.Monitor == nil {
		d := miscDiag(KindSerial, errcode.InvalidArgument, nil, "cannot read chip serial (no secure monitor)")
		b.report(d, types.SeverityError)
		return d
	}
	s, err := b.Monitor.ChipSerial()
	if err != nil {
		d := miscDiag(KindSerial, errcode.InvalidArgument, err, "cannot read chip serial (%v)", err)
		b.report(d, types.SeverityError)
		return d
	}

	val := b.Deriver.FromSerial(s.Bytes()).Compact()
	if err := b.Env.Set(p.SerialKey, val); err != nil {
		b.report(miscDiag(KindSerialSet, errcode.Of(err), err, "cannot set %s (%v)", p.SerialKey, err), types.SeverityWarn)
		return nil
	}
	b.debugf("%s=%s", p.SerialKey, val)
	b.publish(b.topic("serial"), types.SerialProvisioned{Key: p.SerialKey, Value: val}, true)
	return nil
}

func miscDiag(k Kind, c errcode.Code, err error, format string, args ...any) *Diag {
	return &Diag{Hook: HookMisc, Kind: k, C: c, Msg: fmt.Sprintf(format, args...), Err: err}
}
