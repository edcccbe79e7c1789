package beacon

import (
	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

var (
	// oui is the ASD-STAN organizationally unique identifier for Remote ID
	oui = []byte{0xFA, 0x0B, 0xBC}
)

// vendorType is the Open Drone ID vendor specific type
const vendorType = 0x0D

// BuildVendorElement returns the vendor specific information element carrying one message pack
func BuildVendorElement(counter uint8, pack []byte) ([]byte, error) {
	info := make([]byte, 0, len(oui)+2+len(pack))
	info = append(info, oui...)
	info = append(info, vendorType, counter)
	info = append(info, pack...)
	ie := layers.Dot11InformationElement{ID: layers.Dot11InformationElementIDVendor, Length: uint8(len(info)), Info: info}
	buf := gopacket.NewSerializeBuffer()
	if err := ie.SerializeTo(buf, gopacket.SerializeOptions{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
