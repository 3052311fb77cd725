package emu_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/bgpu/emu"
)

var _ = Describe("MapTraceSink", func() {
	It("appends writes in call order within a register's history", func() {
		sink := emu.NewMapTraceSink()
		sink.Record(0, 1, 5, 10, 100)
		sink.Record(0, 1, 5, 11, 200)

		writes := sink.Blocks[0][1][5]
		Expect(writes).To(HaveLen(2))
		Expect(writes[0].Timestamp).To(Equal(int64(10)))
		Expect(writes[1].Value).To(Equal(int32(200)))
	})

	It("grows Blocks lazily as new block indices are recorded", func() {
		sink := emu.NewMapTraceSink()
		sink.Record(2, 0, 0, 0, 0)
		Expect(sink.Blocks).To(HaveLen(3))
		Expect(sink.Blocks[0]).To(BeEmpty())
		Expect(sink.Blocks[1]).To(BeEmpty())
	})
})

var _ = Describe("JSONTraceSink", func() {
	It("writes the block -> thread -> register -> [timestamp, value] shape", func() {
		var buf bytes.Buffer
		sink := emu.NewJSONTraceSink(&buf)
		sink.Record(0, 1, 5, 10, 100)
		Expect(sink.Flush()).To(Succeed())

		var doc map[string]map[string]map[string][][2]int64
		Expect(json.Unmarshal(buf.Bytes(), &doc)).To(Succeed())
		Expect(doc["0"]["1"]["5"]).To(Equal([][2]int64{{10, 100}}))
	})
})
