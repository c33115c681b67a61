package cpu

// execute decodes and runs a single already-fetched opcode, returning its
// cycle cost. An unrecognized opcode returns UnimplementedOpcodeError with
// PC pointing at the opcode byte (PC has already advanced past it, so the
// caller rewinds on error).
func (c *CPU) execute(op byte) (int, error) {
	switch op {
	case 0x00: // NOP
		return 2, nil

	// --- MOV A,src ---
	case 0xE8: // MOV A,#imm
		c.A = c.fetch8()
		c.setZN8(c.A)
		return 2, nil
	case 0xE4: // MOV A,dp
		c.A = c.read8(c.dpAddr(c.fetch8()))
		c.setZN8(c.A)
		return 3, nil
	case 0xF4: // MOV A,dp+X
		c.A = c.read8(c.dpAddr(c.fetch8() + c.X))
		c.setZN8(c.A)
		return 4, nil
	case 0xE5: // MOV A,!abs
		c.A = c.read8(c.fetch16())
		c.setZN8(c.A)
		return 4, nil
	case 0xF5: // MOV A,!abs+X
		c.A = c.read8(c.fetch16() + uint16(c.X))
		c.setZN8(c.A)
		return 5, nil
	case 0xF6: // MOV A,!abs+Y
		c.A = c.read8(c.fetch16() + uint16(c.Y))
		c.setZN8(c.A)
		return 5, nil
	case 0xE6: // MOV A,(X)
		c.A = c.read8(c.dpAddr(c.X))
		c.setZN8(c.A)
		return 3, nil
	case 0xBF: // MOV A,(X)+
		c.A = c.read8(c.dpAddr(c.X))
		c.X++
		c.setZN8(c.A)
		return 4, nil
	case 0xE7: // MOV A,(dp+X)
		ptr := c.dpAddr(c.fetch8() + c.X)
		c.A = c.read8(c.read16(ptr))
		c.setZN8(c.A)
		return 6, nil
	case 0xF7: // MOV A,(dp)+Y
		ptr := c.dpAddr(c.fetch8())
		c.A = c.read8(c.read16(ptr) + uint16(c.Y))
		c.setZN8(c.A)
		return 6, nil
	case 0x7D: // MOV A,X
		c.A = c.X
		c.setZN8(c.A)
		return 2, nil
	case 0xDD: // MOV A,Y
		c.A = c.Y
		c.setZN8(c.A)
		return 2, nil

	// --- MOV X,src ---
	case 0xCD: // MOV X,#imm
		c.X = c.fetch8()
		c.setZN8(c.X)
		return 2, nil
	case 0xF8: // MOV X,dp
		c.X = c.read8(c.dpAddr(c.fetch8()))
		c.setZN8(c.X)
		return 3, nil
	case 0xF9: // MOV X,dp+Y
		c.X = c.read8(c.dpAddr(c.fetch8() + c.Y))
		c.setZN8(c.X)
		return 4, nil
	case 0xE9: // MOV X,!abs
		c.X = c.read8(c.fetch16())
		c.setZN8(c.X)
		return 4, nil
	case 0x5D: // MOV X,A
		c.X = c.A
		c.setZN8(c.X)
		return 2, nil
	case 0x9D: // MOV X,SP
		c.X = c.SP
		c.setZN8(c.X)
		return 2, nil

	// --- MOV Y,src ---
	case 0x8D: // MOV Y,#imm
		c.Y = c.fetch8()
		c.setZN8(c.Y)
		return 2, nil
	case 0xEB: // MOV Y,dp
		c.Y = c.read8(c.dpAddr(c.fetch8()))
		c.setZN8(c.Y)
		return 3, nil
	case 0xFB: // MOV Y,dp+X
		c.Y = c.read8(c.dpAddr(c.fetch8() + c.X))
		c.setZN8(c.Y)
		return 4, nil
	case 0xEC: // MOV Y,!abs
		c.Y = c.read8(c.fetch16())
		c.setZN8(c.Y)
		return 4, nil
	case 0xFD: // MOV Y,A
		c.Y = c.A
		c.setZN8(c.Y)
		return 2, nil

	// --- MOV dst,A (stores never touch flags) ---
	case 0xC4: // MOV dp,A
		c.write8(c.dpAddr(c.fetch8()), c.A)
		return 4, nil
	case 0xD4: // MOV dp+X,A
		c.write8(c.dpAddr(c.fetch8()+c.X), c.A)
		return 5, nil
	case 0xC5: // MOV !abs,A
		c.write8(c.fetch16(), c.A)
		return 5, nil
	case 0xD5: // MOV !abs+X,A
		c.write8(c.fetch16()+uint16(c.X), c.A)
		return 6, nil
	case 0xD6: // MOV !abs+Y,A
		c.write8(c.fetch16()+uint16(c.Y), c.A)
		return 6, nil
	case 0xC6: // MOV (X),A
		c.write8(c.dpAddr(c.X), c.A)
		return 4, nil
	case 0xAF: // MOV (X)+,A
		c.write8(c.dpAddr(c.X), c.A)
		c.X++
		return 4, nil
	case 0xC7: // MOV (dp+X),A
		ptr := c.dpAddr(c.fetch8() + c.X)
		c.write8(c.read16(ptr), c.A)
		return 7, nil
	case 0xD7: // MOV (dp)+Y,A
		ptr := c.dpAddr(c.fetch8())
		c.write8(c.read16(ptr)+uint16(c.Y), c.A)
		return 7, nil

	case 0xD8: // MOV dp,X
		c.write8(c.dpAddr(c.fetch8()), c.X)
		return 4, nil
	case 0xD9: // MOV dp+Y,X
		c.write8(c.dpAddr(c.fetch8()+c.Y), c.X)
		return 5, nil
	case 0xC9: // MOV !abs,X
		c.write8(c.fetch16(), c.X)
		return 5, nil

	case 0xCB: // MOV dp,Y
		c.write8(c.dpAddr(c.fetch8()), c.Y)
		return 4, nil
	case 0xDB: // MOV dp+X,Y
		c.write8(c.dpAddr(c.fetch8()+c.X), c.Y)
		return 5, nil
	case 0xCC: // MOV !abs,Y
		c.write8(c.fetch16(), c.Y)
		return 5, nil

	case 0xBD: // MOV SP,X
		c.SP = c.X
		return 2, nil

	case 0xFA: // MOV dp,dp (dest, src)
		dst := c.fetch8()
		src := c.fetch8()
		c.write8(c.dpAddr(dst), c.read8(c.dpAddr(src)))
		return 5, nil
	case 0x8F: // MOV dp,#imm (imm, dp)
		imm := c.fetch8()
		dst := c.fetch8()
		c.write8(c.dpAddr(dst), imm)
		return 5, nil

	case 0xBA: // MOVW YA,dp
		v := c.read16(c.dpAddr(c.fetch8()))
		c.setYA(v)
		c.setZN16(v)
		return 5, nil
	case 0xDA: // MOVW dp,YA
		addr := c.dpAddr(c.fetch8())
		v := c.ya()
		c.write8(addr, byte(v))
		c.write8(addr+1, byte(v>>8))
		return 5, nil

	// --- INC/DEC ---
	case 0xBC:
		c.A = c.inc(c.A)
		return 2, nil
	case 0x3D:
		c.X = c.inc(c.X)
		return 2, nil
	case 0xFC:
		c.Y = c.inc(c.Y)
		return 2, nil
	case 0xAB:
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.inc(c.read8(addr)))
		return 4, nil
	case 0xBB:
		addr := c.dpAddr(c.fetch8() + c.X)
		c.write8(addr, c.inc(c.read8(addr)))
		return 5, nil
	case 0xAC:
		addr := c.fetch16()
		c.write8(addr, c.inc(c.read8(addr)))
		return 5, nil
	case 0x9C:
		c.A = c.dec(c.A)
		return 2, nil
	case 0x1D:
		c.X = c.dec(c.X)
		return 2, nil
	case 0xDC:
		c.Y = c.dec(c.Y)
		return 2, nil
	case 0x8B:
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.dec(c.read8(addr)))
		return 4, nil
	case 0x9B:
		addr := c.dpAddr(c.fetch8() + c.X)
		c.write8(addr, c.dec(c.read8(addr)))
		return 5, nil
	case 0x8C:
		addr := c.fetch16()
		c.write8(addr, c.dec(c.read8(addr)))
		return 5, nil

	case 0x3A: // INCW dp
		addr := c.dpAddr(c.fetch8())
		c.storeWord(addr, c.incw16(c.read16(addr)))
		return 6, nil
	case 0x1A: // DECW dp
		addr := c.dpAddr(c.fetch8())
		c.storeWord(addr, c.decw16(c.read16(addr)))
		return 6, nil

	// --- ALU: ADC ---
	case 0x88:
		c.A = c.adc(c.A, c.fetch8())
		return 2, nil
	case 0x84:
		c.A = c.adc(c.A, c.read8(c.dpAddr(c.fetch8())))
		return 3, nil
	case 0x94:
		c.A = c.adc(c.A, c.read8(c.dpAddr(c.fetch8()+c.X)))
		return 4, nil
	case 0x85:
		c.A = c.adc(c.A, c.read8(c.fetch16()))
		return 4, nil
	case 0x95:
		c.A = c.adc(c.A, c.read8(c.fetch16()+uint16(c.X)))
		return 5, nil
	case 0x96:
		c.A = c.adc(c.A, c.read8(c.fetch16()+uint16(c.Y)))
		return 5, nil
	case 0x86:
		c.A = c.adc(c.A, c.read8(c.dpAddr(c.X)))
		return 3, nil
	case 0x87:
		ptr := c.dpAddr(c.fetch8() + c.X)
		c.A = c.adc(c.A, c.read8(c.read16(ptr)))
		return 6, nil
	case 0x97:
		ptr := c.dpAddr(c.fetch8())
		c.A = c.adc(c.A, c.read8(c.read16(ptr)+uint16(c.Y)))
		return 6, nil
	case 0x89: // ADC dp,dp
		srcAddr := c.dpAddr(c.fetch8())
		dstAddr := c.dpAddr(c.fetch8())
		c.write8(dstAddr, c.adc(c.read8(dstAddr), c.read8(srcAddr)))
		return 6, nil
	case 0x98: // ADC dp,#imm
		imm := c.fetch8()
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.adc(c.read8(addr), imm))
		return 5, nil
	case 0x99: // ADC (X),(Y)
		xAddr, yAddr := c.dpAddr(c.X), c.dpAddr(c.Y)
		c.write8(xAddr, c.adc(c.read8(xAddr), c.read8(yAddr)))
		return 5, nil

	// --- ALU: SBC ---
	case 0xA8:
		c.A = c.sbc(c.A, c.fetch8())
		return 2, nil
	case 0xA4:
		c.A = c.sbc(c.A, c.read8(c.dpAddr(c.fetch8())))
		return 3, nil
	case 0xB4:
		c.A = c.sbc(c.A, c.read8(c.dpAddr(c.fetch8()+c.X)))
		return 4, nil
	case 0xA5:
		c.A = c.sbc(c.A, c.read8(c.fetch16()))
		return 4, nil
	case 0xB5:
		c.A = c.sbc(c.A, c.read8(c.fetch16()+uint16(c.X)))
		return 5, nil
	case 0xB6:
		c.A = c.sbc(c.A, c.read8(c.fetch16()+uint16(c.Y)))
		return 5, nil
	case 0xA6:
		c.A = c.sbc(c.A, c.read8(c.dpAddr(c.X)))
		return 3, nil
	case 0xA7:
		ptr := c.dpAddr(c.fetch8() + c.X)
		c.A = c.sbc(c.A, c.read8(c.read16(ptr)))
		return 6, nil
	case 0xB7:
		ptr := c.dpAddr(c.fetch8())
		c.A = c.sbc(c.A, c.read8(c.read16(ptr)+uint16(c.Y)))
		return 6, nil
	case 0xA9: // SBC dp,dp
		srcAddr := c.dpAddr(c.fetch8())
		dstAddr := c.dpAddr(c.fetch8())
		c.write8(dstAddr, c.sbc(c.read8(dstAddr), c.read8(srcAddr)))
		return 6, nil
	case 0xB8: // SBC dp,#imm
		imm := c.fetch8()
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.sbc(c.read8(addr), imm))
		return 5, nil
	case 0xB9: // SBC (X),(Y)
		xAddr, yAddr := c.dpAddr(c.X), c.dpAddr(c.Y)
		c.write8(xAddr, c.sbc(c.read8(xAddr), c.read8(yAddr)))
		return 5, nil

	// --- CMP A ---
	case 0x68:
		c.cmp(c.A, c.fetch8())
		return 2, nil
	case 0x64:
		c.cmp(c.A, c.read8(c.dpAddr(c.fetch8())))
		return 3, nil
	case 0x74:
		c.cmp(c.A, c.read8(c.dpAddr(c.fetch8()+c.X)))
		return 4, nil
	case 0x65:
		c.cmp(c.A, c.read8(c.fetch16()))
		return 4, nil
	case 0x75:
		c.cmp(c.A, c.read8(c.fetch16()+uint16(c.X)))
		return 5, nil
	case 0x76:
		c.cmp(c.A, c.read8(c.fetch16()+uint16(c.Y)))
		return 5, nil
	case 0x66:
		c.cmp(c.A, c.read8(c.dpAddr(c.X)))
		return 3, nil
	case 0x67:
		ptr := c.dpAddr(c.fetch8() + c.X)
		c.cmp(c.A, c.read8(c.read16(ptr)))
		return 6, nil
	case 0x77:
		ptr := c.dpAddr(c.fetch8())
		c.cmp(c.A, c.read8(c.read16(ptr)+uint16(c.Y)))
		return 6, nil
	case 0x69: // CMP dp,dp
		srcAddr := c.dpAddr(c.fetch8())
		dstAddr := c.dpAddr(c.fetch8())
		c.cmp(c.read8(dstAddr), c.read8(srcAddr))
		return 6, nil
	case 0x78: // CMP dp,#imm
		imm := c.fetch8()
		addr := c.dpAddr(c.fetch8())
		c.cmp(c.read8(addr), imm)
		return 5, nil
	case 0x79: // CMP (X),(Y)
		c.cmp(c.read8(c.dpAddr(c.X)), c.read8(c.dpAddr(c.Y)))
		return 5, nil
	case 0xC8: // CMP X,#imm
		c.cmp(c.X, c.fetch8())
		return 2, nil
	case 0x3E: // CMP X,dp
		c.cmp(c.X, c.read8(c.dpAddr(c.fetch8())))
		return 3, nil
	case 0x1E: // CMP X,!abs
		c.cmp(c.X, c.read8(c.fetch16()))
		return 4, nil
	case 0xAD: // CMP Y,#imm
		c.cmp(c.Y, c.fetch8())
		return 2, nil
	case 0x7E: // CMP Y,dp
		c.cmp(c.Y, c.read8(c.dpAddr(c.fetch8())))
		return 3, nil
	case 0x5E: // CMP Y,!abs
		c.cmp(c.Y, c.read8(c.fetch16()))
		return 4, nil

	// --- AND ---
	case 0x28:
		c.A = c.and(c.A, c.fetch8())
		return 2, nil
	case 0x24:
		c.A = c.and(c.A, c.read8(c.dpAddr(c.fetch8())))
		return 3, nil
	case 0x34:
		c.A = c.and(c.A, c.read8(c.dpAddr(c.fetch8()+c.X)))
		return 4, nil
	case 0x25:
		c.A = c.and(c.A, c.read8(c.fetch16()))
		return 4, nil
	case 0x35:
		c.A = c.and(c.A, c.read8(c.fetch16()+uint16(c.X)))
		return 5, nil
	case 0x36:
		c.A = c.and(c.A, c.read8(c.fetch16()+uint16(c.Y)))
		return 5, nil
	case 0x26:
		c.A = c.and(c.A, c.read8(c.dpAddr(c.X)))
		return 3, nil
	case 0x27:
		ptr := c.dpAddr(c.fetch8() + c.X)
		c.A = c.and(c.A, c.read8(c.read16(ptr)))
		return 6, nil
	case 0x37:
		ptr := c.dpAddr(c.fetch8())
		c.A = c.and(c.A, c.read8(c.read16(ptr)+uint16(c.Y)))
		return 6, nil
	case 0x29:
		srcAddr := c.dpAddr(c.fetch8())
		dstAddr := c.dpAddr(c.fetch8())
		c.write8(dstAddr, c.and(c.read8(dstAddr), c.read8(srcAddr)))
		return 6, nil
	case 0x38:
		imm := c.fetch8()
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.and(c.read8(addr), imm))
		return 5, nil
	case 0x39:
		xAddr, yAddr := c.dpAddr(c.X), c.dpAddr(c.Y)
		c.write8(xAddr, c.and(c.read8(xAddr), c.read8(yAddr)))
		return 5, nil

	// --- OR ---
	case 0x08:
		c.A = c.or(c.A, c.fetch8())
		return 2, nil
	case 0x04:
		c.A = c.or(c.A, c.read8(c.dpAddr(c.fetch8())))
		return 3, nil
	case 0x14:
		c.A = c.or(c.A, c.read8(c.dpAddr(c.fetch8()+c.X)))
		return 4, nil
	case 0x05:
		c.A = c.or(c.A, c.read8(c.fetch16()))
		return 4, nil
	case 0x15:
		c.A = c.or(c.A, c.read8(c.fetch16()+uint16(c.X)))
		return 5, nil
	case 0x16:
		c.A = c.or(c.A, c.read8(c.fetch16()+uint16(c.Y)))
		return 5, nil
	case 0x06:
		c.A = c.or(c.A, c.read8(c.dpAddr(c.X)))
		return 3, nil
	case 0x07:
		ptr := c.dpAddr(c.fetch8() + c.X)
		c.A = c.or(c.A, c.read8(c.read16(ptr)))
		return 6, nil
	case 0x17:
		ptr := c.dpAddr(c.fetch8())
		c.A = c.or(c.A, c.read8(c.read16(ptr)+uint16(c.Y)))
		return 6, nil
	case 0x09:
		srcAddr := c.dpAddr(c.fetch8())
		dstAddr := c.dpAddr(c.fetch8())
		c.write8(dstAddr, c.or(c.read8(dstAddr), c.read8(srcAddr)))
		return 6, nil
	case 0x18:
		imm := c.fetch8()
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.or(c.read8(addr), imm))
		return 5, nil
	case 0x19:
		xAddr, yAddr := c.dpAddr(c.X), c.dpAddr(c.Y)
		c.write8(xAddr, c.or(c.read8(xAddr), c.read8(yAddr)))
		return 5, nil

	// --- EOR ---
	case 0x48:
		c.A = c.eor(c.A, c.fetch8())
		return 2, nil
	case 0x44:
		c.A = c.eor(c.A, c.read8(c.dpAddr(c.fetch8())))
		return 3, nil
	case 0x54:
		c.A = c.eor(c.A, c.read8(c.dpAddr(c.fetch8()+c.X)))
		return 4, nil
	case 0x45:
		c.A = c.eor(c.A, c.read8(c.fetch16()))
		return 4, nil
	case 0x55:
		c.A = c.eor(c.A, c.read8(c.fetch16()+uint16(c.X)))
		return 5, nil
	case 0x56:
		c.A = c.eor(c.A, c.read8(c.fetch16()+uint16(c.Y)))
		return 5, nil
	case 0x46:
		c.A = c.eor(c.A, c.read8(c.dpAddr(c.X)))
		return 3, nil
	case 0x47:
		ptr := c.dpAddr(c.fetch8() + c.X)
		c.A = c.eor(c.A, c.read8(c.read16(ptr)))
		return 6, nil
	case 0x57:
		ptr := c.dpAddr(c.fetch8())
		c.A = c.eor(c.A, c.read8(c.read16(ptr)+uint16(c.Y)))
		return 6, nil
	case 0x49:
		srcAddr := c.dpAddr(c.fetch8())
		dstAddr := c.dpAddr(c.fetch8())
		c.write8(dstAddr, c.eor(c.read8(dstAddr), c.read8(srcAddr)))
		return 6, nil
	case 0x58:
		imm := c.fetch8()
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.eor(c.read8(addr), imm))
		return 5, nil
	case 0x59:
		xAddr, yAddr := c.dpAddr(c.X), c.dpAddr(c.Y)
		c.write8(xAddr, c.eor(c.read8(xAddr), c.read8(yAddr)))
		return 5, nil

	// --- word ops ---
	case 0x7A: // ADDW YA,dp
		c.setYA(c.addw(c.read16(c.dpAddr(c.fetch8()))))
		return 5, nil
	case 0x9A: // SUBW YA,dp
		c.setYA(c.subw(c.read16(c.dpAddr(c.fetch8()))))
		return 5, nil
	case 0x5A: // CMPW YA,dp
		c.cmpw(c.read16(c.dpAddr(c.fetch8())))
		return 4, nil

	// --- shifts/rotates ---
	case 0x1C:
		c.A = c.asl(c.A)
		return 2, nil
	case 0x0B:
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.asl(c.read8(addr)))
		return 4, nil
	case 0x1B:
		addr := c.dpAddr(c.fetch8() + c.X)
		c.write8(addr, c.asl(c.read8(addr)))
		return 5, nil
	case 0x0C:
		addr := c.fetch16()
		c.write8(addr, c.asl(c.read8(addr)))
		return 5, nil
	case 0x5C:
		c.A = c.lsr(c.A)
		return 2, nil
	case 0x4B:
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.lsr(c.read8(addr)))
		return 4, nil
	case 0x5B:
		addr := c.dpAddr(c.fetch8() + c.X)
		c.write8(addr, c.lsr(c.read8(addr)))
		return 5, nil
	case 0x4C:
		addr := c.fetch16()
		c.write8(addr, c.lsr(c.read8(addr)))
		return 5, nil
	case 0x3C:
		c.A = c.rol(c.A)
		return 2, nil
	case 0x2B:
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.rol(c.read8(addr)))
		return 4, nil
	case 0x3B:
		addr := c.dpAddr(c.fetch8() + c.X)
		c.write8(addr, c.rol(c.read8(addr)))
		return 5, nil
	case 0x2C:
		addr := c.fetch16()
		c.write8(addr, c.rol(c.read8(addr)))
		return 5, nil
	case 0x7C:
		c.A = c.ror(c.A)
		return 2, nil
	case 0x6B:
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.ror(c.read8(addr)))
		return 4, nil
	case 0x7B:
		addr := c.dpAddr(c.fetch8() + c.X)
		c.write8(addr, c.ror(c.read8(addr)))
		return 5, nil
	case 0x6C:
		addr := c.fetch16()
		c.write8(addr, c.ror(c.read8(addr)))
		return 5, nil

	// --- special ALU ---
	case 0xCF: // MUL YA
		c.mul()
		return 9, nil
	case 0x9E: // DIV YA,X
		c.div()
		return 12, nil
	case 0xDF: // DAA
		c.daa()
		return 3, nil
	case 0xBE: // DAS
		c.das()
		return 3, nil
	case 0x9F: // XCN A
		c.xcn()
		return 5, nil

	// --- branches ---
	case 0x2F: // BRA
		return c.branch(true), nil
	case 0xF0: // BEQ
		return c.branch(c.flag(flagZ)), nil
	case 0xD0: // BNE
		return c.branch(!c.flag(flagZ)), nil
	case 0xB0: // BCS
		return c.branch(c.flag(flagC)), nil
	case 0x90: // BCC
		return c.branch(!c.flag(flagC)), nil
	case 0x70: // BVS
		return c.branch(c.flag(flagV)), nil
	case 0x50: // BVC
		return c.branch(!c.flag(flagV)), nil
	case 0x30: // BMI
		return c.branch(c.flag(flagN)), nil
	case 0x10: // BPL
		return c.branch(!c.flag(flagN)), nil

	case 0x03, 0x23, 0x43, 0x63, 0x83, 0xA3, 0xC3, 0xE3: // BBS dp.bit,rel
		bit := uint((op >> 5) & 7)
		addr := c.dpAddr(c.fetch8())
		v := c.read8(addr)
		rel := c.fetch8()
		if v&(1<<bit) != 0 {
			c.PC = uint16(int32(c.PC) + int32(int8(rel)))
			return 7, nil
		}
		return 5, nil
	case 0x13, 0x33, 0x53, 0x73, 0x93, 0xB3, 0xD3, 0xF3: // BBC dp.bit,rel
		bit := uint((op >> 5) & 7)
		addr := c.dpAddr(c.fetch8())
		v := c.read8(addr)
		rel := c.fetch8()
		if v&(1<<bit) == 0 {
			c.PC = uint16(int32(c.PC) + int32(int8(rel)))
			return 7, nil
		}
		return 5, nil

	case 0x2E: // CBNE dp,rel
		addr := c.dpAddr(c.fetch8())
		v := c.read8(addr)
		rel := c.fetch8()
		if c.A != v {
			c.PC = uint16(int32(c.PC) + int32(int8(rel)))
			return 7, nil
		}
		return 5, nil
	case 0xDE: // CBNE dp+X,rel
		addr := c.dpAddr(c.fetch8() + c.X)
		v := c.read8(addr)
		rel := c.fetch8()
		if c.A != v {
			c.PC = uint16(int32(c.PC) + int32(int8(rel)))
			return 8, nil
		}
		return 6, nil
	case 0x6E: // DBNZ dp,rel
		addr := c.dpAddr(c.fetch8())
		v := c.read8(addr) - 1
		c.write8(addr, v)
		rel := c.fetch8()
		if v != 0 {
			c.PC = uint16(int32(c.PC) + int32(int8(rel)))
			return 7, nil
		}
		return 5, nil
	case 0xFE: // DBNZ Y,rel
		c.Y--
		rel := c.fetch8()
		if c.Y != 0 {
			c.PC = uint16(int32(c.PC) + int32(int8(rel)))
			return 6, nil
		}
		return 4, nil

	case 0x5F: // JMP !abs
		c.PC = c.fetch16()
		return 3, nil
	case 0x1F: // JMP [!abs+X]
		ptr := c.fetch16() + uint16(c.X)
		c.PC = c.read16(ptr)
		return 6, nil

	case 0x3F: // CALL !abs
		target := c.fetch16()
		c.push16(c.PC)
		c.PC = target
		return 8, nil
	case 0x4F: // PCALL up (zero-page-style call into $FF00-$FFFF)
		up := c.fetch8()
		c.push16(c.PC)
		c.PC = 0xFF00 | uint16(up)
		return 6, nil

	case 0x01, 0x11, 0x21, 0x31, 0x41, 0x51, 0x61, 0x71,
		0x81, 0x91, 0xA1, 0xB1, 0xC1, 0xD1, 0xE1, 0xF1: // TCALL n
		n := uint16(op >> 4)
		if c.cfg.NullVectorHLE && n == 1 {
			c.A = c.Y
			return 8, nil
		}
		vecAddr := uint16(0xFFDE) - 2*n
		target := c.read16(vecAddr)
		c.push16(c.PC)
		c.PC = target
		return 8, nil

	case 0x6F: // RET
		c.PC = c.pop16()
		return 5, nil
	case 0x7F: // RETI
		c.PSW = c.pop8()
		c.PC = c.pop16()
		return 6, nil
	case 0x0F: // BRK
		c.push16(c.PC)
		c.push8(c.PSW)
		c.setFlag(flagB, true)
		c.setFlag(flagI, false)
		c.PC = c.read16(0xFFDE)
		return 8, nil

	case 0x2D: // PUSH A
		c.push8(c.A)
		return 4, nil
	case 0x4D: // PUSH X
		c.push8(c.X)
		return 4, nil
	case 0x6D: // PUSH Y
		c.push8(c.Y)
		return 4, nil
	case 0x0D: // PUSH PSW
		c.push8(c.PSW)
		return 4, nil
	case 0xAE: // POP A
		c.A = c.pop8()
		return 4, nil
	case 0xCE: // POP X
		c.X = c.pop8()
		return 4, nil
	case 0xEE: // POP Y
		c.Y = c.pop8()
		return 4, nil
	case 0x8E: // POP PSW
		c.PSW = c.pop8()
		return 4, nil

	case 0x02, 0x22, 0x42, 0x62, 0x82, 0xA2, 0xC2, 0xE2: // SET1 dp.bit
		bit := uint((op >> 5) & 7)
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.read8(addr)|1<<bit)
		return 4, nil
	case 0x12, 0x32, 0x52, 0x72, 0x92, 0xB2, 0xD2, 0xF2: // CLR1 dp.bit
		bit := uint((op >> 5) & 7)
		addr := c.dpAddr(c.fetch8())
		c.write8(addr, c.read8(addr)&^(1<<bit))
		return 4, nil

	case 0x0E: // TSET1 !abs
		addr := c.fetch16()
		m := c.read8(addr)
		c.cmp(c.A, m)
		c.write8(addr, m|c.A)
		return 6, nil
	case 0x4E: // TCLR1 !abs
		addr := c.fetch16()
		m := c.read8(addr)
		c.cmp(c.A, m)
		c.write8(addr, m&^c.A)
		return 6, nil

	case 0x0A: // OR1 C, mem.bit
		v, bit := c.bitOperand()
		c.setFlag(flagC, c.flag(flagC) || (v&(1<<bit) != 0))
		return 5, nil
	case 0x2A: // OR1 C, /mem.bit
		v, bit := c.bitOperand()
		c.setFlag(flagC, c.flag(flagC) || (v&(1<<bit) == 0))
		return 5, nil
	case 0x4A: // AND1 C, mem.bit
		v, bit := c.bitOperand()
		c.setFlag(flagC, c.flag(flagC) && (v&(1<<bit) != 0))
		return 4, nil
	case 0x6A: // AND1 C, /mem.bit
		v, bit := c.bitOperand()
		c.setFlag(flagC, c.flag(flagC) && (v&(1<<bit) == 0))
		return 4, nil
	case 0x8A: // EOR1 C, mem.bit
		v, bit := c.bitOperand()
		bitSet := v&(1<<bit) != 0
		c.setFlag(flagC, c.flag(flagC) != bitSet)
		return 5, nil
	case 0xEA: // NOT1 mem.bit
		addr, bit := c.bitAddr()
		c.write8(addr, c.read8(addr)^1<<bit)
		return 5, nil
	case 0xAA: // MOV1 C, mem.bit
		v, bit := c.bitOperand()
		c.setFlag(flagC, v&(1<<bit) != 0)
		return 4, nil
	case 0xCA: // MOV1 mem.bit, C
		addr, bit := c.bitAddr()
		v := c.read8(addr)
		if c.flag(flagC) {
			v |= 1 << bit
		} else {
			v &^= 1 << bit
		}
		c.write8(addr, v)
		return 6, nil

	case 0x60: // CLRC
		c.setFlag(flagC, false)
		return 2, nil
	case 0x80: // SETC
		c.setFlag(flagC, true)
		return 2, nil
	case 0xED: // NOTC
		c.setFlag(flagC, !c.flag(flagC))
		return 3, nil
	case 0xE0: // CLRV
		c.setFlag(flagV, false)
		c.setFlag(flagH, false)
		return 2, nil
	case 0x20: // CLRP
		c.setFlag(flagP, false)
		return 2, nil
	case 0x40: // SETP
		c.setFlag(flagP, true)
		return 2, nil
	case 0xA0: // EI
		c.setFlag(flagI, true)
		return 3, nil
	case 0xC0: // DI
		c.setFlag(flagI, false)
		return 3, nil

	case 0xEF: // SLEEP
		if !c.cfg.LowPowerDisabled {
			c.sleeping = true
		}
		return 3, nil
	case 0xFF: // STOP
		if !c.cfg.LowPowerDisabled {
			c.stopped = true
		}
		return 3, nil
	}

	return 0, &UnimplementedOpcodeError{PC: c.PC - 1, Opcode: op}
}

// branch resolves a relative branch, taken when cond is true. Taken
// branches cost two cycles more than untaken ones.
func (c *CPU) branch(cond bool) int {
	rel := c.fetch8()
	if !cond {
		return 2
	}
	c.PC = uint16(int32(c.PC) + int32(int8(rel)))
	return 4
}

func (c *CPU) storeWord(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

// bitAddr decodes the 16-bit absolute-bit operand (bits 13-15 name the
// bit, bits 0-12 name the address) that OR1/AND1/EOR1/NOT1/MOV1 share.
func (c *CPU) bitAddr() (uint16, uint) {
	word := c.fetch16()
	addr := word & 0x1FFF
	bit := uint(word >> 13)
	return addr, bit
}

func (c *CPU) bitOperand() (byte, uint) {
	addr, bit := c.bitAddr()
	return c.read8(addr), bit
}
