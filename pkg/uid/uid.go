// Package uid computes structural identifiers for schema types. A UID is
// the CRC-32 (reversed polynomial 0xEDB88320, initial and final XOR
// 0xFFFFFFFF) of a canonical ASCII rendering of the descriptor, so
// identical subgraphs always hash to identical UIDs no matter which
// builder produced them.
package uid

import (
	"hash/crc32"
	"strconv"
	"strings"
)

// Checksum computes the raw CRC-32 of data using the IEEE polynomial.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ChecksumString is Checksum over the bytes of s.
func ChecksumString(s string) uint32 {
	return crc32.ChecksumIEEE([]byte(s))
}

// Primitive hashes "<name>, <packedSize>".
func Primitive(name string, packedSize int) uint32 {
	return ChecksumString(name + ", " + strconv.Itoa(packedSize))
}

// Array hashes "<elemUID>, <size>". UIDs render in unsigned decimal.
func Array(elemUID uint32, size int) uint32 {
	return ChecksumString(formatUID(elemUID) + ", " + strconv.Itoa(size))
}

// EnumValue hashes "<name>, <index>".
func EnumValue(name string, index int) uint32 {
	return ChecksumString(name + ", " + strconv.Itoa(index))
}

// Enum hashes "<name>, <v0.uid>, <v1.uid>, ...".
func Enum(name string, valueUIDs []uint32) uint32 {
	return ChecksumString(joinUIDs(name, valueUIDs))
}

// BitfieldField hashes "<name>, <bitSize>".
func BitfieldField(name string, bitSize int) uint32 {
	return ChecksumString(name + ", " + strconv.Itoa(bitSize))
}

// Bitfield hashes "<name>, <f0.uid>, <f1.uid>, ...".
func Bitfield(name string, fieldUIDs []uint32) uint32 {
	return ChecksumString(joinUIDs(name, fieldUIDs))
}

// StructField hashes "<name>, <typeUID>".
func StructField(name string, typeUID uint32) uint32 {
	return ChecksumString(name + ", " + formatUID(typeUID))
}

// Struct hashes "<name>, <f0.uid>, <f1.uid>, ...".
func Struct(name string, fieldUIDs []uint32) uint32 {
	return ChecksumString(joinUIDs(name, fieldUIDs))
}

func formatUID(u uint32) string {
	return strconv.FormatUint(uint64(u), 10)
}

func joinUIDs(name string, uids []uint32) string {
	var sb strings.Builder
	sb.WriteString(name)
	for _, u := range uids {
		sb.WriteString(", ")
		sb.WriteString(formatUID(u))
	}
	return sb.String()
}
